package main

import (
	"os"

	"github.com/seedline-dev/seedline/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
