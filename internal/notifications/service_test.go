package notifications

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelcheck/internal/config"
	"reelcheck/internal/scanner"
)

func newTestService(t *testing.T, handler http.HandlerFunc) Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	return NewService(&cfg)
}

func TestNotifyScanCompleted(t *testing.T) {
	var gotTitle, gotTags string
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotTags = r.Header.Get("Tags")
		w.WriteHeader(http.StatusOK)
	})

	snap := scanner.Snapshot{RootPath: "/library", ProcessedFiles: 10}
	if err := service.NotifyScanCompleted(context.Background(), snap); err != nil {
		t.Fatalf("NotifyScanCompleted: %v", err)
	}
	if gotTitle != "Reelcheck - Scan Complete" {
		t.Errorf("title = %q", gotTitle)
	}
	if gotTags != "reelcheck,scan,completed" {
		t.Errorf("tags = %q", gotTags)
	}
}

func TestNotifyScanCompletedWithFailures(t *testing.T) {
	var gotTitle string
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		w.WriteHeader(http.StatusOK)
	})

	snap := scanner.Snapshot{RootPath: "/library", ProcessedFiles: 8, FailedFiles: 2}
	if err := service.NotifyScanCompleted(context.Background(), snap); err != nil {
		t.Fatalf("NotifyScanCompleted: %v", err)
	}
	if gotTitle != "Reelcheck - Scan Complete (with errors)" {
		t.Errorf("title = %q", gotTitle)
	}
}

func TestNotifyServerError(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	})

	if err := service.TestNotification(context.Background()); err == nil {
		t.Error("expected error for non-2xx response")
	}
}

func TestNoopWithoutTopic(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	service := NewService(&cfg)

	if err := service.TestNotification(context.Background()); err != nil {
		t.Errorf("noop service returned error: %v", err)
	}
}

func TestScanNotifierGates(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.ScanComplete = false
	cfg.Notifications.Errors = true

	notifier := NewScanNotifier(NewService(&cfg), &cfg, nil)
	notifier.ScanCompleted(context.Background(), scanner.Snapshot{})
	if requests != 0 {
		t.Error("scan-complete notification should be gated off")
	}

	notifier.ScanFailed(context.Background(), scanner.Snapshot{}, nil)
	if requests != 1 {
		t.Errorf("requests = %d, want 1 failure notification", requests)
	}
}
