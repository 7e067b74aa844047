package mediainfo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"reelcheck/internal/logging"
)

// Prober executes the MediaInfo binary against individual files.
type Prober struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewProber constructs a Prober. An empty binary falls back to "mediainfo";
// a non-positive timeout falls back to five minutes.
func NewProber(binary string, timeout time.Duration, logger *slog.Logger) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "mediainfo"
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Prober{
		binary:  binary,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "prober"),
	}
}

// Probe runs the external tool and returns the parsed Properties.
// Failures are returned as *ProbeError so callers can dispatch on Kind.
func (p *Prober) Probe(ctx context.Context, path string) (Properties, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Properties{}, newProbeError(KindFileMissing, path, err)
		}
		return Properties{}, newProbeError(KindFailed, path, err)
	}

	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, p.binary, "--Output=XML", path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		switch {
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			return Properties{}, newProbeError(KindTimeout, path, fmt.Errorf("probe exceeded %s", p.timeout))
		case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist):
			return Properties{}, newProbeError(KindUnavailable, path, err)
		default:
			detail := strings.TrimSpace(stderr.String())
			if detail != "" {
				err = fmt.Errorf("%w: %s", err, detail)
			}
			return Properties{}, newProbeError(KindFailed, path, err)
		}
	}

	props, err := parseOutput(path, info.Size(), stdout.Bytes())
	if err != nil {
		return Properties{}, newProbeError(KindMalformed, path, err)
	}

	if IsMP4Family(props.Container) {
		enabled, conclusive, fsErr := detectFastStart(path)
		if fsErr != nil || !conclusive {
			// Best-effort: an unreadable or inconclusive box walk is a
			// warning, not a probe failure.
			p.logger.Warn("fast-start detection inconclusive",
				logging.String(logging.FieldPath, path),
				logging.Error(fsErr),
			)
		}
		props.FastStart = enabled
	}

	return props, nil
}
