package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and library status",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := ctx.client().status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(out, line)
			}
			runningKind := statusError
			if status.Running {
				runningKind = statusOK
			}
			fmt.Fprintln(out, renderStatusLine("Running", runningKind, yesNo(status.Running), colorize))
			fmt.Fprintln(out, renderStatusLine("PID", statusInfo, fmt.Sprintf("%d", status.PID), colorize))
			fmt.Fprintln(out, renderStatusLine("Database", statusInfo, status.DatabasePath, colorize))

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Active scans", colorize) {
				fmt.Fprintln(out, line)
			}
			if len(status.ActiveScans) == 0 {
				fmt.Fprintln(out, statusIndent+"none")
			}
			for _, scan := range status.ActiveScans {
				detail := fmt.Sprintf("%d/%d files (%.0f%%) %s", scan.ProcessedFiles+scan.FailedFiles, scan.TotalFiles, scan.Percent, scan.RootPath)
				fmt.Fprintln(out, renderStatusLine(shortID(scan.ID), statusInfo, detail, colorize))
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Library", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Analyzed files", statusInfo, fmt.Sprintf("%d", status.Library.TotalAnalyses), colorize))
			brokenKind := statusOK
			if status.Library.BrokenFiles > 0 {
				brokenKind = statusWarn
			}
			fmt.Fprintln(out, renderStatusLine("Broken files", brokenKind, fmt.Sprintf("%d", status.Library.BrokenFiles), colorize))
			for _, label := range sortedLabels(status.Library.LabelCounts) {
				kind := labelStatusKind(label, false)
				fmt.Fprintln(out, renderStatusLine(label, kind, fmt.Sprintf("%d", status.Library.LabelCounts[label]), colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Completed scans", statusInfo, fmt.Sprintf("%d", status.Library.CompletedScans), colorize))
			return nil
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func sortedLabels(counts map[string]int) []string {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		if strings.TrimSpace(label) != "" {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}
