// Package gate implements the external approval gate used when automatic
// title detection fails: a request is published for a human, the gate
// waits for the response, and the filled values are handed back to the
// pipeline.
package gate

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks github.com/vmunix/tvingest/internal/gate Gate

// DefaultPollInterval is how often the file gate re-reads a pending
// request file.
const DefaultPollInterval = 5 * time.Second

// Request names the fields a human must supply, plus free-form context to
// help them do it.
type Request struct {
	TaskID  int64
	Fields  []string
	Context any
}

// Gate publishes a request for external input and blocks until the
// response arrives.
type Gate interface {
	Await(ctx context.Context, req Request) (map[string]string, error)
}

// File is a filesystem-backed gate: it writes a JSON request file, polls
// it until a human edits it in place and sets ready_to_import, then
// deletes it.
type File struct {
	dir      string
	interval time.Duration
	log      *slog.Logger
}

// NewFile creates a file gate writing request files into dir. A zero
// interval uses DefaultPollInterval.
func NewFile(dir string, interval time.Duration, log *slog.Logger) *File {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &File{dir: dir, interval: interval, log: log}
}

// Await writes the request file and polls until ready_to_import is set.
// Transient read and parse errors (a human mid-edit) are ignored.
// Polling is unbounded; cancellation is the only other exit, and the
// request file is removed on every exit path.
func (g *File) Await(ctx context.Context, req Request) (map[string]string, error) {
	path := filepath.Join(g.dir, requestFilename(req.TaskID))

	payload := map[string]any{
		"ready_to_import": false,
		"context":         req.Context,
		"README": fmt.Sprintf(
			"Edit the following keys: %s; When finished, set 'ready_to_import' to true.",
			strings.Join(req.Fields, ",")),
	}
	for _, f := range req.Fields {
		payload[f] = nil
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("write request file: %w", err)
	}
	defer func() { _ = os.Remove(path) }()

	g.log.Info("manual input required", "task_id", req.TaskID, "file", path, "fields", strings.Join(req.Fields, ","))

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		values, ready := readResponse(path, req.Fields)
		if ready {
			return values, nil
		}
	}
}

// readResponse parses the request file and extracts the filled fields.
// It reports ready only when the flag is set and every field has a value.
func readResponse(path string, fields []string) (map[string]string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, false
	}
	ready, _ := parsed["ready_to_import"].(bool)
	if !ready {
		return nil, false
	}

	values := make(map[string]string, len(fields))
	for _, f := range fields {
		v, ok := parsed[f]
		if !ok || v == nil {
			return nil, false
		}
		switch t := v.(type) {
		case string:
			values[f] = t
		case float64:
			// JSON numbers; episode/season answers arrive this way.
			values[f] = strings.TrimSuffix(fmt.Sprintf("%v", t), ".0")
		default:
			values[f] = fmt.Sprintf("%v", t)
		}
	}
	return values, true
}

func requestFilename(taskID int64) string {
	var buf [2]byte
	_, _ = rand.Read(buf[:])
	return fmt.Sprintf("mov_import.user_conf.t%d.r%s.json", taskID, hex.EncodeToString(buf[:]))
}
