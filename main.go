package main

import (
	"os"

	"github.com/nativegroup/gospi/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
