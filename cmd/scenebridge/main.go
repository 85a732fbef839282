package main

import (
	"os"

	"github.com/msto63/scenebridge/cmd/scenebridge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
