package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"partwise/internal/fileutil"
	"partwise/internal/partname"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <archive...>",
		Short: "Show how archives would be grouped into categories",
		Long: `Plan groups the given archive files by category without extracting
anything, reporting part completeness and which part indices are missing.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			groups := partname.GroupByCategory(args, cfg.Extraction.ArchiveExtension)
			categories := partname.SortedCategories(groups)
			if len(categories) == 0 {
				return fmt.Errorf("no files with extension %s among the inputs", cfg.Extraction.ArchiveExtension)
			}

			rows := make([][]string, 0, len(categories))
			incomplete := 0
			for _, category := range categories {
				descriptors := groups[category]
				complete := partname.ValidateCompleteness(descriptors)
				if !complete {
					incomplete++
				}

				missing := "-"
				if indices := partname.MissingIndices(descriptors); len(indices) > 0 {
					parts := make([]string, len(indices))
					for i, idx := range indices {
						parts[i] = strconv.Itoa(idx)
					}
					missing = strings.Join(parts, ",")
				}

				paths := make([]string, len(descriptors))
				for i, d := range descriptors {
					paths[i] = d.SourcePath
				}
				rows = append(rows, []string{
					category,
					fmt.Sprintf("%d/%d", len(descriptors), descriptors[0].TotalParts),
					yesNo(complete),
					missing,
					humanize.IBytes(uint64(fileutil.SizeOnDisk(paths))),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Category", "Parts", "Complete", "Missing", "Archive size"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignRight},
			))
			if incomplete > 0 {
				fmt.Fprintf(out, "%d of %d categories are incomplete and would fail extraction\n", incomplete, len(categories))
			}
			return nil
		},
	}
}
