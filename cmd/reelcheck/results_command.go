package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelcheck/internal/api"
)

func newResultsCommand(ctx *commandContext) *cobra.Command {
	var label string
	var brokenOnly bool
	var scanID string
	var limit int

	cmd := &cobra.Command{
		Use:   "results",
		Short: "List analyzed files",
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := ctx.client().listResults(cmd.Context(), resultsQuery{
				ScanID: strings.TrimSpace(scanID),
				Label:  strings.TrimSpace(label),
				Broken: brokenOnly,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No results match.")
				return nil
			}
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				rows = append(rows, resultRow(result))
			}
			fmt.Fprintln(out, renderTable(
				[]tableColumn{numCol("ID"), col("File"), numCol("Rating"), numCol("Score"), col("Label"), numCol("Size")},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "Filter by label (Optimal, Good, Poor)")
	cmd.Flags().BoolVar(&brokenOnly, "broken", false, "Only broken files")
	cmd.Flags().StringVar(&scanID, "scan", "", "Only results from one scan id")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows to return")
	return cmd
}

func resultRow(result api.AnalysisSummary) []string {
	label := result.Label
	if result.Broken {
		label = "Broken"
		if result.BrokenReason != "" {
			label += " (" + result.BrokenReason + ")"
		}
	}
	return []string{
		strconv.FormatInt(result.ID, 10),
		result.FileName,
		strconv.Itoa(result.Rating),
		strconv.Itoa(result.Score),
		label,
		formatSize(result.FileSize),
	}
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
