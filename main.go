package main

import (
	"os"

	"github.com/conneroisu/demoapp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
