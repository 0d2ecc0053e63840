package main

import (
	"os"

	"github.com/tonkit/go-cell/cmd/cellutil/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
