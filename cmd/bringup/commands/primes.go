package commands

import (
	"bufio"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bringup/bringup/pkg/driver"
	"github.com/bringup/bringup/pkg/sieve"
)

func newPrimesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "primes <N>",
		Short: "Print the primes up to N",
		Long: `Print every prime in [2, N], one per line, without banner, cycle
headers or telemetry. Useful for generating a reference list to compare
"bringup run" output against.`,
		Example: `  bringup primes 30`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return driver.NewConfigError("invalid upper bound", err)
			}
			if n < 2 {
				return usageError("upper bound must be at least 2, got %d", n)
			}

			primes := sieve.Primes(uint32(n))
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), primes)
			}

			w := bufio.NewWriter(cmd.OutOrStdout())
			for _, p := range primes {
				w.WriteString(strconv.FormatUint(uint64(p), 10))
				w.WriteByte('\n')
			}
			return w.Flush()
		},
	}

	return cmd
}
