package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	ctx := context.Background()

	a := newApp()
	rootCmd := NewRootCmd(version, a)
	err := fang.Execute(ctx, rootCmd)
	a.Close()
	if err != nil {
		os.Exit(1)
	}
}
