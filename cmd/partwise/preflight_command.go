package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"partwise/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check directories and disk space before extracting",
		RunE: func(cmd *cobra.Command, args []string) error {
			results := preflight.RunAll(ctx.configValue())

			out := cmd.OutOrStdout()
			failed := 0
			for _, result := range results {
				marker := "ok"
				if !result.Passed {
					marker = "FAIL"
					failed++
				}
				line := fmt.Sprintf("%-4s %s", marker, result.Name)
				if result.Detail != "" {
					line += ": " + result.Detail
				}
				fmt.Fprintln(out, line)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d preflight checks failed", failed, len(results))
			}
			fmt.Fprintln(out, "All preflight checks passed")
			return nil
		},
	}
}
