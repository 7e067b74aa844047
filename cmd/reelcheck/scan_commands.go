package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelcheck/internal/api"
	"reelcheck/internal/store"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var force bool
	var wait bool

	cmd := &cobra.Command{
		Use:   "scan PATH",
		Short: "Start a library scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve scan path: %w", err)
			}

			client := ctx.client()
			scan, err := client.startScan(cmd.Context(), root, force)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scan %s started for %s\n", scan.ID, scan.RootPath)
			if !wait {
				fmt.Fprintf(out, "Track progress with `reelcheck scans` or `reelcheck scan --wait`.\n")
				return nil
			}
			return waitForScan(cmd.Context(), cmd, client, scan.ID)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Discard existing results under the path and re-probe everything")
	cmd.Flags().BoolVar(&wait, "wait", false, "Block until the scan finishes, printing progress")
	return cmd
}

func waitForScan(ctx context.Context, cmd *cobra.Command, client *daemonClient, scanID string) error {
	out := cmd.OutOrStdout()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lastLine string
	for {
		scan, err := client.describeScan(ctx, scanID)
		if err != nil {
			return err
		}

		line := fmt.Sprintf("%s: %d/%d files (%.0f%%)", scan.Status, scan.ProcessedFiles+scan.FailedFiles, scan.TotalFiles, scan.Percent)
		if scan.CurrentFile != "" {
			line += " " + filepath.Base(scan.CurrentFile)
		}
		if line != lastLine {
			fmt.Fprintln(out, line)
			lastLine = line
		}

		if store.ScanStatus(scan.Status).IsTerminal() {
			if scan.Status == string(store.ScanFailed) {
				return fmt.Errorf("scan failed: %s", scan.ErrorMessage)
			}
			if scan.FailedFiles > 0 {
				fmt.Fprintf(out, "%d files failed; inspect them with `reelcheck scans` and the failures endpoint.\n", scan.FailedFiles)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func newScansCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var showFailures string

	cmd := &cobra.Command{
		Use:   "scans",
		Short: "List scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()
			out := cmd.OutOrStdout()

			if strings.TrimSpace(showFailures) != "" {
				failures, err := client.scanFailures(cmd.Context(), strings.TrimSpace(showFailures))
				if err != nil {
					return err
				}
				if len(failures) == 0 {
					fmt.Fprintln(out, "No failures recorded.")
					return nil
				}
				rows := make([][]string, 0, len(failures))
				for _, f := range failures {
					rows = append(rows, []string{f.FileName, f.ErrorKind, formatSize(f.FileSize), f.ErrorMessage})
				}
				fmt.Fprintln(out, renderTable(
					[]tableColumn{col("File"), col("Kind"), numCol("Size"), col("Error")},
					rows,
				))
				return nil
			}

			scans, err := client.listScans(cmd.Context(), statuses)
			if err != nil {
				return err
			}
			if len(scans) == 0 {
				fmt.Fprintln(out, "No scans recorded.")
				return nil
			}
			rows := make([][]string, 0, len(scans))
			for _, scan := range scans {
				rows = append(rows, scanRow(scan))
			}
			fmt.Fprintln(out, renderTable(
				[]tableColumn{col("ID"), col("Path"), col("Status"), numCol("Progress"), numCol("Failed"), col("Started")},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (pending, running, completed, failed, cancelled)")
	cmd.Flags().StringVar(&showFailures, "failures", "", "Show the failure records of one scan id")
	return cmd
}

func scanRow(scan api.ScanSummary) []string {
	progress := fmt.Sprintf("%d/%d (%.0f%%)", scan.ProcessedFiles+scan.FailedFiles, scan.TotalFiles, scan.Percent)
	return []string{
		scan.ID,
		scan.RootPath,
		scan.Status,
		progress,
		strconv.Itoa(scan.FailedFiles),
		scan.StartedAt,
	}
}

func newCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel SCAN_ID",
		Short: "Cancel a running scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scanID := strings.TrimSpace(args[0])
			if err := ctx.client().cancelScan(cmd.Context(), scanID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cancellation requested for scan %s\n", scanID)
			return nil
		},
	}
}
