package main

import (
	"os"

	"github.com/tabsplit/tabsplit/cmd/tabsplit/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
