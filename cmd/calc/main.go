package main

import (
	"os"

	"github.com/calc-lang/calc-lang/cmd/calc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
