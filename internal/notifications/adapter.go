package notifications

import (
	"context"
	"log/slog"

	"reelcheck/internal/config"
	"reelcheck/internal/logging"
	"reelcheck/internal/scanner"
)

// ScanNotifier adapts a Service to the orchestrator's Notifier
// interface, applying the configured event gates and logging delivery
// failures instead of propagating them.
type ScanNotifier struct {
	service      Service
	logger       *slog.Logger
	scanComplete bool
	errors       bool
}

// NewScanNotifier wires the service to the scanner lifecycle events.
func NewScanNotifier(service Service, cfg *config.Config, logger *slog.Logger) *ScanNotifier {
	return &ScanNotifier{
		service:      service,
		logger:       logging.NewComponentLogger(logger, "notifications"),
		scanComplete: cfg.Notifications.ScanComplete,
		errors:       cfg.Notifications.Errors,
	}
}

func (s *ScanNotifier) ScanCompleted(ctx context.Context, snap scanner.Snapshot) {
	if !s.scanComplete {
		return
	}
	if err := s.service.NotifyScanCompleted(ctx, snap); err != nil {
		s.logger.Warn("deliver scan-complete notification",
			logging.String(logging.FieldScanID, snap.ScanID),
			logging.Error(err),
		)
	}
}

func (s *ScanNotifier) ScanFailed(ctx context.Context, snap scanner.Snapshot, cause error) {
	if !s.errors {
		return
	}
	if err := s.service.NotifyScanFailed(ctx, snap, cause); err != nil {
		s.logger.Warn("deliver scan-failed notification",
			logging.String(logging.FieldScanID, snap.ScanID),
			logging.Error(err),
		)
	}
}
