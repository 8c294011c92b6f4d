package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/AnishMulay/fatstore/internal/config"
	"github.com/AnishMulay/fatstore/internal/volume"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	configPath := flag.String("config", config.DefaultFile, "Path to the YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// zap writes to stderr, so stdout stays free for the MCP stream
	opts, closer, err := volume.OptionsFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer()

	v, err := volume.Build(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build volume: %v\n", err)
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"fatstore",
		"1.0.0",
		server.WithToolCapabilities(false),
	)
	addTools(s, &toolServer{vol: v, ls: opts.LogService})

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
	}
}
