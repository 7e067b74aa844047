package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"reelcheck/internal/api"
	"reelcheck/internal/logging"
	"reelcheck/internal/store"
	"reelcheck/internal/testsupport"
)

const stubProbeOutput = `<?xml version="1.0" encoding="UTF-8"?>
<MediaInfo xmlns="https://mediaarea.net/mediainfo" version="2.0">
  <media>
    <track type="General">
      <Format>Matroska</Format>
      <FileSize>1048576</FileSize>
      <Duration>60000</Duration>
    </track>
    <track type="Video">
      <Format>AVC</Format>
      <Width>1920</Width>
      <Height>1080</Height>
      <FrameRate>23.976</FrameRate>
    </track>
    <track type="Audio">
      <Format>AAC</Format>
      <Channels>2</Channels>
    </track>
  </media>
</MediaInfo>`

func newTestServer(t *testing.T) (*apiServer, *Daemon, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t,
		testsupport.WithWorkers(2),
		testsupport.WithProbeStub(stubProbeOutput),
	)
	st := testsupport.MustOpenStore(t, cfg)
	d, err := New(cfg, st, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(d.Stop)
	return d.api, d, testsupport.LibraryDir(t, cfg)
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response: %v\n%s", err, w.Body.String())
	}
}

func startScanAndWait(t *testing.T, srv *apiServer, d *Daemon, root string) string {
	t.Helper()
	body := strings.NewReader(`{"path": "` + root + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/scans", body)
	w := httptest.NewRecorder()
	srv.handleScans(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("start scan: expected 202, got %d: %s", w.Code, w.Body.String())
	}
	var resp api.ScanResponse
	decodeJSON(t, w, &resp)
	if resp.Scan.ID == "" {
		t.Fatal("expected a scan id")
	}
	d.orchestrator.Wait(resp.Scan.ID)
	return resp.Scan.ID
}

func TestAPIServerScanLifecycle(t *testing.T) {
	srv, d, root := newTestServer(t)
	testsupport.WriteVideoFile(t, root, "movie.mkv")

	scanID := startScanAndWait(t, srv, d, root)

	req := httptest.NewRequest(http.MethodGet, "/api/scans/"+scanID, nil)
	w := httptest.NewRecorder()
	srv.handleScanItem(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("describe scan: expected 200, got %d", w.Code)
	}
	var resp api.ScanResponse
	decodeJSON(t, w, &resp)
	if resp.Scan.Status != string(store.ScanCompleted) {
		t.Errorf("status = %q, want completed", resp.Scan.Status)
	}
	if resp.Scan.ProcessedFiles != 1 || resp.Scan.FailedFiles != 0 {
		t.Errorf("counters = %d/%d", resp.Scan.ProcessedFiles, resp.Scan.FailedFiles)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/scans", nil)
	w = httptest.NewRecorder()
	srv.handleScans(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list scans: expected 200, got %d", w.Code)
	}
	var list api.ScanListResponse
	decodeJSON(t, w, &list)
	if len(list.Scans) != 1 || list.Scans[0].ID != scanID {
		t.Errorf("scan list = %+v", list.Scans)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/scans/"+scanID+"/failures", nil)
	w = httptest.NewRecorder()
	srv.handleScanItem(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list failures: expected 200, got %d", w.Code)
	}
	var failures api.FailureListResponse
	decodeJSON(t, w, &failures)
	if len(failures.Failures) != 0 {
		t.Errorf("failures = %+v", failures.Failures)
	}
}

func TestAPIServerResults(t *testing.T) {
	srv, d, root := newTestServer(t)
	testsupport.WriteVideoFile(t, root, "movie.mkv")
	startScanAndWait(t, srv, d, root)

	req := httptest.NewRequest(http.MethodGet, "/api/results", nil)
	w := httptest.NewRecorder()
	srv.handleResults(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list results: expected 200, got %d", w.Code)
	}
	var list api.AnalysisListResponse
	decodeJSON(t, w, &list)
	if len(list.Results) != 1 {
		t.Fatalf("results = %+v", list.Results)
	}
	summary := list.Results[0]
	if summary.FileName != "movie.mkv" || summary.Broken {
		t.Errorf("summary = %+v", summary)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/results/"+strconv.FormatInt(summary.ID, 10), nil)
	w = httptest.NewRecorder()
	srv.handleResultItem(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get result: expected 200, got %d", w.Code)
	}
	var detail api.AnalysisResponse
	decodeJSON(t, w, &detail)
	if len(detail.Result.Properties) == 0 || len(detail.Result.RatingReport) == 0 {
		t.Error("expected embedded property and rating reports")
	}
}

func TestAPIServerStatus(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	srv.handleStatus(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status: expected 200, got %d", w.Code)
	}
	var status api.DaemonStatus
	decodeJSON(t, w, &status)
	if status.PID <= 0 {
		t.Errorf("pid = %d", status.PID)
	}
	if status.DatabasePath == "" || status.LockFilePath == "" {
		t.Errorf("status = %+v", status)
	}
}

func TestAPIServerErrors(t *testing.T) {
	srv, _, _ := newTestServer(t)

	cases := []struct {
		name    string
		method  string
		target  string
		body    string
		handler func(http.ResponseWriter, *http.Request)
		want    int
	}{
		{"status wrong method", http.MethodPost, "/api/status", "", srv.handleStatus, http.StatusMethodNotAllowed},
		{"start without path", http.MethodPost, "/api/scans", `{}`, srv.handleScans, http.StatusBadRequest},
		{"start bad body", http.MethodPost, "/api/scans", `{`, srv.handleScans, http.StatusBadRequest},
		{"start missing root", http.MethodPost, "/api/scans", `{"path":"/does/not/exist"}`, srv.handleScans, http.StatusBadRequest},
		{"unknown scan", http.MethodGet, "/api/scans/nope", "", srv.handleScanItem, http.StatusNotFound},
		{"unknown scan action", http.MethodGet, "/api/scans/nope/resume", "", srv.handleScanItem, http.StatusNotFound},
		{"cancel wrong method", http.MethodGet, "/api/scans/nope/cancel", "", srv.handleScanItem, http.StatusMethodNotAllowed},
		{"result bad id", http.MethodGet, "/api/results/abc", "", srv.handleResultItem, http.StatusBadRequest},
		{"result missing", http.MethodGet, "/api/results/999", "", srv.handleResultItem, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req *http.Request
			if tc.body != "" {
				req = httptest.NewRequest(tc.method, tc.target, strings.NewReader(tc.body))
			} else {
				req = httptest.NewRequest(tc.method, tc.target, nil)
			}
			w := httptest.NewRecorder()
			tc.handler(w, req)
			if w.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestAPIServerCancelUnknownScan(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/scans/nope/cancel", nil)
	w := httptest.NewRecorder()
	srv.handleScanItem(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
