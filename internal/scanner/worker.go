package scanner

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"reelcheck/internal/logging"
	"reelcheck/internal/mediainfo"
	"reelcheck/internal/rating"
	"reelcheck/internal/store"
	"reelcheck/internal/subtitles"
)

// processFile drives one file through the probe/rate/persist pipeline.
// Every error path is local to the file: it is recorded and the worker
// moves on.
func (o *Orchestrator) processFile(ctx context.Context, scanID string, tracker *Tracker, path string) {
	if ctx.Err() != nil {
		return
	}
	tracker.fileStarted(path)

	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	// Store writes use a background context so in-flight files can land
	// their results even while the scan is being cancelled.
	if err := o.store.BeginAnalysis(context.Background(), scanID, path, size); err != nil {
		o.logger.Error("begin analysis",
			logging.String(logging.FieldScanID, scanID),
			logging.String(logging.FieldPath, path),
			logging.Error(err),
		)
	}

	props, err := o.prober.Probe(ctx, path)
	if err != nil {
		o.recordFailure(scanID, tracker, path, size, mediainfo.KindOf(err), err)
		return
	}

	for _, companion := range o.findCompanions(path) {
		props.SubtitleTracks = append(props.SubtitleTracks, mediainfo.SubtitleTrack{
			Format:     subtitles.FormatForPath(companion),
			Embedded:   false,
			SourcePath: companion,
		})
	}

	analysis := &store.Analysis{
		ScanID:   scanID,
		FilePath: path,
		FileSize: props.SizeBytes,
	}

	if reason := brokenReason(props); reason != "" {
		analysis.Broken = true
		analysis.BrokenReason = reason
		analysis.PropertiesJSON = marshalOrEmpty(props)
		o.logger.Warn("broken media",
			logging.String(logging.FieldScanID, scanID),
			logging.String(logging.FieldPath, path),
			logging.String("reason", reason),
		)
	} else {
		result := o.evaluateWithTimeout(ctx, props)
		analysis.Rating = result.Rating
		analysis.Score = result.Score
		analysis.Label = result.Label
		analysis.PropertiesJSON = marshalOrEmpty(props)
		analysis.RatingJSON = marshalOrEmpty(result)
	}

	if err := o.store.SaveAnalysis(context.Background(), analysis); err != nil {
		o.recordFailure(scanID, tracker, path, props.SizeBytes, "result_write", err)
		return
	}

	done := tracker.fileProcessed()
	o.checkpoint(scanID, tracker, done)
}

func (o *Orchestrator) recordFailure(scanID string, tracker *Tracker, path string, size int64, kind mediainfo.ErrorKind, cause error) {
	if err := o.store.RecordFailure(context.Background(), &store.Failure{
		ScanID:       scanID,
		FilePath:     path,
		FileSize:     size,
		ErrorKind:    string(kind),
		ErrorMessage: cause.Error(),
	}); err != nil {
		o.logger.Error("record failure",
			logging.String(logging.FieldScanID, scanID),
			logging.String(logging.FieldPath, path),
			logging.Error(err),
		)
	}
	o.logger.Warn("file analysis failed",
		logging.String(logging.FieldScanID, scanID),
		logging.String(logging.FieldPath, path),
		logging.String(logging.FieldErrorHint, string(kind)),
		logging.Error(cause),
	)

	done := tracker.fileFailed()
	o.checkpoint(scanID, tracker, done)
}

// checkpoint persists progress every saveEvery files to bound write
// amplification.
func (o *Orchestrator) checkpoint(scanID string, tracker *Tracker, done int) {
	if done%o.saveEvery != 0 {
		return
	}
	snap := tracker.Snapshot()
	if err := o.store.UpdateScanProgress(context.Background(), scanID, snap.ProcessedFiles, snap.FailedFiles, snap.CurrentFile); err != nil {
		o.logger.Error("checkpoint progress",
			logging.String(logging.FieldScanID, scanID),
			logging.Error(err),
		)
	}
}

// evaluateWithTimeout bounds the rating computation. Evaluation is a
// pure in-memory pass and effectively instant; the budget exists so a
// pathological input degrades to a placeholder instead of wedging a
// worker.
func (o *Orchestrator) evaluateWithTimeout(ctx context.Context, props mediainfo.Properties) rating.Result {
	resultCh := make(chan rating.Result, 1)
	go func() {
		resultCh <- o.engine.Evaluate(props)
	}()

	timer := time.NewTimer(o.resultTimeout)
	defer timer.Stop()

	select {
	case result := <-resultCh:
		return result
	case <-timer.C:
	case <-ctx.Done():
	}
	return rating.Result{
		Label:  "Unknown",
		Issues: []string{"rating computation did not finish in time"},
	}
}

// brokenReason applies the post-probe sanity checks. A non-empty reason
// marks the file broken: probing worked, the media itself is invalid.
func brokenReason(props mediainfo.Properties) string {
	switch {
	case props.VideoCodec == "" && props.Container == "":
		return "Missing codec and container"
	case props.Width <= 0 || props.Height <= 0:
		return "Invalid dimensions"
	case props.DurationSeconds <= 0:
		return "Invalid duration"
	case props.SizeBytes <= 0:
		return "Zero file size"
	default:
		return ""
	}
}

func marshalOrEmpty(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
