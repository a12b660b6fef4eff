package main

import (
	"os"

	"github.com/etresoft/libosmium/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
