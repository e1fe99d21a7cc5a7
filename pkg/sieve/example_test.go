package sieve_test

import (
	"fmt"

	"github.com/bringup/bringup/pkg/sieve"
)

func ExamplePrimes() {
	fmt.Println(sieve.Primes(30))
	// Output: [2 3 5 7 11 13 17 19 23 29]
}

func ExampleTable_Compute() {
	table := sieve.New(10)
	for cycle := 1; cycle <= 2; cycle++ {
		fmt.Println(cycle, table.Compute())
	}
	// Output:
	// 1 [2 3 5 7]
	// 2 [2 3 5 7]
}
