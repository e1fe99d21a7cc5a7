package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bringup/bringup/pkg/config"
	"github.com/bringup/bringup/pkg/driver"
	"github.com/bringup/bringup/pkg/stores"
)

const defaultConfigFile = "bringup.yaml"

func newInitCommand() *cobra.Command {
	var (
		force   bool
		history string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write a configuration file holding the built-in defaults, ready to edit.

The file is written to --config, or bringup.yaml in the current
directory. With --history the run history database is created and
migrated as well.`,
		Example: `  # Write ./bringup.yaml
  bringup init

  # Custom path plus a history database
  bringup init --config /etc/bringup.yaml --history /var/lib/bringup.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				path = defaultConfigFile
			}

			log.Info().
				Str("config", path).
				Str("history", history).
				Msg("Initializing")

			cfg := config.Default()
			cfg.History.Path = history

			data, err := cfg.YAML()
			if err != nil {
				return fmt.Errorf("failed to render config: %w", err)
			}

			flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
			if force {
				flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			}
			f, err := os.OpenFile(path, flags, 0644)
			if errors.Is(err, fs.ErrExist) {
				return driver.NewConfigError(
					fmt.Sprintf("%s already exists, use --force to overwrite", path), err)
			}
			if err != nil {
				return fmt.Errorf("failed to create config file: %w", err)
			}
			if _, err := f.Write(data); err != nil {
				f.Close()
				return fmt.Errorf("failed to write config file: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", path)

			if history != "" {
				store, err := stores.Open(cmd.Context(), history)
				if err != nil {
					return driver.NewHistoryError("failed to initialize history", err)
				}
				if err := store.Close(); err != nil {
					return driver.NewHistoryError("failed to close history", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized history database: %s\n", history)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.Flags().StringVar(&history, "history", "", "create the run history database at this path")

	return cmd
}
