package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvvmshift/mvvmshift/internal/syntax"
)

func dumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the syntax tree of a C# source file",
		Long:  `Parse a C# file and print its syntax tree as an S-expression. Useful when debugging why a rule does or does not match.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := syntax.NewParser().ParseFile(context.Background(), args[0])
			if err != nil {
				return err
			}
			defer doc.Close()

			fmt.Println(doc.Sexp())
			return nil
		},
	}

	return cmd
}
