package main

import (
	"fmt"
	"os"

	"github.com/hanlens/hanlens/internal/cli"
	"github.com/hanlens/hanlens/internal/config"
)

func main() {
	cfg, err := config.Load(os.Getenv("HANLENS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cli.SetupRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
