package main

import (
	"os"

	"github.com/fetzsav/dice/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
