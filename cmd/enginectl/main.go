// Command enginectl calls the compute engine over gRPC.
//
//	enginectl greet Ada
//	enginectl pi 1000000
//	enginectl matmul --a 2x3:1,2,3,4,5,6 --b 3x2:7,8,9,10,11,12
//	enginectl stats 1 2 2 3 9 --population
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
