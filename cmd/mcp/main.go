package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mvvmshift/mvvmshift/internal/engine"
	"github.com/mvvmshift/mvvmshift/internal/mcp"
)

var version = "dev"

func main() {
	// Stdout carries the protocol; everything else goes to stderr.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	eng, err := engine.New(engine.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create engine")
	}

	srv := mcp.NewServer(eng, version)

	log.Info().Str("version", version).Msg("starting MCP server on stdio")
	if err := mcp.ServeStdio(srv); err != nil {
		log.Fatal().Err(err).Msg("MCP server failed")
	}
}
