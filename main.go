package main

import (
	"os"

	"github.com/threadstead/threadstead/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
