package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"partwise/internal/extractor"
	"partwise/internal/logging"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <archive>",
		Short: "List an archive's entries without extracting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex := extractor.New(logging.NewNop())
			names, err := ex.ListContents(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			fmt.Fprintf(out, "%d entries\n", len(names))
			return nil
		},
	}
}
