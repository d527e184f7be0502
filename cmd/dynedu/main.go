package main

import (
	"os"

	"github.com/prg-dinamics/dynedu/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
