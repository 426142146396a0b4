// Package cloud provides the remote staging store and video text
// detection used for title OCR. Remote objects are addressed by
// gs://bucket/key URIs.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks github.com/vmunix/tvingest/internal/cloud ObjectStore,TextDetector

// ErrBadURI indicates a remote URI that is not gs://bucket/key shaped.
var ErrBadURI = errors.New("remote URI must be gs://bucket/key")

// ObjectStore moves local files into remote staging storage and removes
// staged objects.
type ObjectStore interface {
	// MoveIn uploads localPath to remoteURI and deletes the local file.
	MoveIn(ctx context.Context, localPath, remoteURI string) error
	// Remove deletes the remote object.
	Remove(ctx context.Context, remoteURI string) error
}

// TextDetector runs text detection on a staged remote video and returns
// the detected strings whose confidence clears minConfidence.
type TextDetector interface {
	DetectText(ctx context.Context, remoteURI string, minConfidence float64) ([]string, error)
}

// TextAnnotation is one detected text with its per-segment confidence
// scores.
type TextAnnotation struct {
	Text        string
	Confidences []float64
}

// ParseURI splits a gs://bucket/key URI into bucket and key.
func ParseURI(uri string) (bucket, key string, err error) {
	trimmed, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrBadURI, uri)
	}
	bucket, key, ok = strings.Cut(trimmed, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q", ErrBadURI, uri)
	}
	return bucket, key, nil
}

// JoinURI appends path elements to a gs:// prefix.
func JoinURI(prefix string, elems ...string) string {
	parts := append([]string{strings.TrimRight(prefix, "/")}, elems...)
	return strings.Join(parts, "/")
}

// FilterByConfidence returns the texts whose median per-segment
// confidence meets or exceeds threshold. A median exactly equal to the
// threshold is included. Annotations with no segments are dropped.
func FilterByConfidence(annotations []TextAnnotation, threshold float64) []string {
	var out []string
	for _, a := range annotations {
		if len(a.Confidences) == 0 {
			continue
		}
		if median(a.Confidences) >= threshold {
			out = append(out, a.Text)
		}
	}
	return out
}

// median returns the statistical median; for an even count, the mean of
// the two middle values.
func median(vals []float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
