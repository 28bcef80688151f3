package main

import (
	"os"

	"github.com/BenjaminSRussell/macwinua/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
