package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"reelcheck/internal/api"
	"reelcheck/internal/mediainfo"
	"reelcheck/internal/rating"
)

// clientDisplayNames covers the names title-casing gets wrong.
var clientDisplayNames = map[string]string{
	"ios":       "iOS",
	"androidtv": "Android TV",
	"appletv":   "Apple TV",
}

var clientTitleCaser = cases.Title(language.English)

func clientDisplayName(client string) string {
	if name, ok := clientDisplayNames[strings.ToLower(client)]; ok {
		return name
	}
	return clientTitleCaser.String(client)
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show RESULT_ID",
		Short: "Show the full compatibility report for one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid result id %q", args[0])
			}
			detail, err := ctx.client().result(cmd.Context(), id)
			if err != nil {
				return err
			}
			return renderResultDetail(cmd, detail)
		},
	}
}

func renderResultDetail(cmd *cobra.Command, detail api.AnalysisDetail) error {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader(detail.FileName, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Path", statusInfo, detail.FilePath, colorize))
	fmt.Fprintln(out, renderStatusLine("Size", statusInfo, formatSize(detail.FileSize), colorize))

	if detail.Broken {
		fmt.Fprintln(out, renderStatusLine("Broken", statusError, detail.BrokenReason, colorize))
		return nil
	}

	fmt.Fprintln(out, renderStatusLine("Label", labelStatusKind(detail.Label, false), detail.Label, colorize))
	fmt.Fprintln(out, renderStatusLine("Rating", statusInfo, strconv.Itoa(detail.Rating), colorize))
	fmt.Fprintln(out, renderStatusLine("Score", statusInfo, strconv.Itoa(detail.Score), colorize))

	if len(detail.Properties) > 0 {
		var props mediainfo.Properties
		if err := json.Unmarshal(detail.Properties, &props); err == nil {
			fmt.Fprintln(out)
			renderProperties(cmd, props, colorize)
		}
	}

	if len(detail.RatingReport) > 0 {
		var report rating.Result
		if err := json.Unmarshal(detail.RatingReport, &report); err == nil {
			fmt.Fprintln(out)
			renderRatingReport(cmd, report, colorize)
		}
	}
	return nil
}

func renderProperties(cmd *cobra.Command, props mediainfo.Properties, colorize bool) {
	out := cmd.OutOrStdout()
	for _, line := range renderSectionHeader("Media properties", colorize) {
		fmt.Fprintln(out, line)
	}

	video := fmt.Sprintf("%s %dx%d", props.VideoCodec, props.Width, props.Height)
	if props.BitDepth > 8 {
		video += fmt.Sprintf(" %d-bit", props.BitDepth)
	}
	fmt.Fprintln(out, renderStatusLine("Container", statusInfo, props.Container, colorize))
	fmt.Fprintln(out, renderStatusLine("Video", statusInfo, video, colorize))
	if props.HDR {
		fmt.Fprintln(out, renderStatusLine("HDR", statusInfo, props.HDRFormat, colorize))
	}
	if mediainfo.IsMP4Family(props.Container) {
		kind := statusOK
		if !props.FastStart {
			kind = statusWarn
		}
		fmt.Fprintln(out, renderStatusLine("Fast start", kind, yesNo(props.FastStart), colorize))
	}
	for i, track := range props.AudioTracks {
		desc := fmt.Sprintf("%s %dch", track.Codec, track.Channels)
		if track.Language != "" {
			desc += " [" + track.Language + "]"
		}
		fmt.Fprintln(out, renderStatusLine(fmt.Sprintf("Audio #%d", i+1), statusInfo, desc, colorize))
	}
	for i, track := range props.SubtitleTracks {
		desc := track.Format
		if track.Language != "" {
			desc += " [" + track.Language + "]"
		}
		if !track.Embedded {
			desc += " (external)"
		}
		fmt.Fprintln(out, renderStatusLine(fmt.Sprintf("Subtitle #%d", i+1), statusInfo, desc, colorize))
	}
}

func renderRatingReport(cmd *cobra.Command, report rating.Result, colorize bool) {
	out := cmd.OutOrStdout()
	for _, line := range renderSectionHeader("Client compatibility", colorize) {
		fmt.Fprintln(out, line)
	}

	clients := make([]string, 0, len(report.Clients))
	for client := range report.Clients {
		clients = append(clients, client)
	}
	sort.Strings(clients)

	rows := make([][]string, 0, len(clients))
	for _, client := range clients {
		disposition := report.Clients[client]
		rows = append(rows, []string{
			clientDisplayName(client),
			string(disposition.Method),
			strings.Join(disposition.Issues, "; "),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]tableColumn{col("Client"), col("Method"), col("Issues")},
		rows,
	))

	if len(report.Issues) > 0 {
		fmt.Fprintln(out)
		for _, line := range renderSectionHeader("Issues", colorize) {
			fmt.Fprintln(out, line)
		}
		for _, issue := range report.Issues {
			fmt.Fprintln(out, statusIndent+"- "+issue)
		}
	}
	if len(report.Recommendations) > 0 {
		fmt.Fprintln(out)
		for _, line := range renderSectionHeader("Recommendations", colorize) {
			fmt.Fprintln(out, line)
		}
		for _, rec := range report.Recommendations {
			fmt.Fprintln(out, statusIndent+"- "+rec)
		}
	}
}
