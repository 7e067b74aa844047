package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"reelcheck/internal/api"
)

// daemonClient talks to the daemon's HTTP API.
type daemonClient struct {
	baseURL string
	http    *http.Client
}

func newDaemonClient(baseURL string) *daemonClient {
	return &daemonClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *daemonClient) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *daemonClient) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *daemonClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapDialError(err, c.baseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return fmt.Errorf("daemon: %s", payload.Error)
	}
	return fmt.Errorf("daemon: %s", resp.Status)
}

func wrapDialError(err error, baseURL string) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("connect to daemon at %s: connection refused; start it with `reelcheck daemon`", baseURL)
	}
	return fmt.Errorf("connect to daemon at %s: %w", baseURL, err)
}

func (c *daemonClient) status(ctx context.Context) (api.DaemonStatus, error) {
	var status api.DaemonStatus
	err := c.get(ctx, "/api/status", &status)
	return status, err
}

func (c *daemonClient) startScan(ctx context.Context, path string, force bool) (api.ScanSummary, error) {
	var resp api.ScanResponse
	err := c.post(ctx, "/api/scans", api.StartScanRequest{Path: path, Force: force}, &resp)
	return resp.Scan, err
}

func (c *daemonClient) listScans(ctx context.Context, statuses []string) ([]api.ScanSummary, error) {
	query := url.Values{}
	for _, status := range statuses {
		if s := strings.TrimSpace(status); s != "" {
			query.Add("status", s)
		}
	}
	target := "/api/scans"
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var resp api.ScanListResponse
	err := c.get(ctx, target, &resp)
	return resp.Scans, err
}

func (c *daemonClient) describeScan(ctx context.Context, scanID string) (api.ScanSummary, error) {
	var resp api.ScanResponse
	err := c.get(ctx, "/api/scans/"+url.PathEscape(scanID), &resp)
	return resp.Scan, err
}

func (c *daemonClient) cancelScan(ctx context.Context, scanID string) error {
	return c.post(ctx, "/api/scans/"+url.PathEscape(scanID)+"/cancel", nil, nil)
}

func (c *daemonClient) scanFailures(ctx context.Context, scanID string) ([]api.FailureRecord, error) {
	var resp api.FailureListResponse
	err := c.get(ctx, "/api/scans/"+url.PathEscape(scanID)+"/failures", &resp)
	return resp.Failures, err
}

type resultsQuery struct {
	ScanID string
	Label  string
	Broken bool
	Limit  int
}

func (c *daemonClient) listResults(ctx context.Context, q resultsQuery) ([]api.AnalysisSummary, error) {
	query := url.Values{}
	if q.ScanID != "" {
		query.Set("scan", q.ScanID)
	}
	if q.Label != "" {
		query.Set("label", q.Label)
	}
	if q.Broken {
		query.Set("broken", "1")
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	target := "/api/results"
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var resp api.AnalysisListResponse
	err := c.get(ctx, target, &resp)
	return resp.Results, err
}

func (c *daemonClient) result(ctx context.Context, id int64) (api.AnalysisDetail, error) {
	var resp api.AnalysisResponse
	err := c.get(ctx, "/api/results/"+strconv.FormatInt(id, 10), &resp)
	return resp.Result, err
}
