package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var version = "dev"

// Output colors, disabled automatically when stdout is not a terminal.
var (
	pathColor     = color.New(color.FgWhite, color.Bold)
	severityColor = color.New(color.FgRed, color.Bold)
	ruleColor     = color.New(color.FgCyan)
	fixableColor  = color.New(color.FgGreen)
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "mvvmshift",
		Short:   "mvvmshift - legacy MVVM pattern migrator",
		Long:    `mvvmshift scans C# codebases for legacy MVVM boilerplate and rewrites it to attribute-driven properties and commands.`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(fixCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(dumpCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
