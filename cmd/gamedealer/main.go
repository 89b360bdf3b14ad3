// Package main is the entry point for gamedealer.
package main

import (
	"os"

	"github.com/gamedealer/gamedealer/cmd/gamedealer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
