package main

import (
	"os"

	"github.com/isshe/luacoderassist/cmd/luasym/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
