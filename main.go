package main

import (
	"fmt"
	"os"

	"github.com/tphakala/plasma-spotlight/cmd"
	"github.com/tphakala/plasma-spotlight/internal/conf"
)

func main() {
	ctx := &conf.Context{}
	rootCmd := cmd.RootCommand(ctx)

	err := rootCmd.Execute()
	cmd.Shutdown()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
