package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvvmshift/mvvmshift/internal/engine"
)

func rulesCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the migration rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := engine.New(engine.Options{})
			if err != nil {
				return err
			}
			infos := eng.Rules()

			if jsonOut {
				return printJSON(infos)
			}

			for _, info := range infos {
				tag := ""
				if info.CanFix {
					tag = " " + fixableColor.Sprint("[fixable]")
				}
				fmt.Printf("%s (%s)%s\n", ruleColor.Sprint(info.ID), info.Severity, tag)
				fmt.Printf("    %s\n", info.Description)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the rules as JSON")

	return cmd
}
