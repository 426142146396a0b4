package cloud

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	videointelligence "cloud.google.com/go/videointelligence/apiv1"
	"cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	gax "github.com/googleapis/gax-go/v2"
)

// Annotation poll pacing: wait min(pollCap, pollBase + 2^i + jitter)
// before poll i, so early completions are caught quickly and long
// operations settle into a fixed cadence.
const (
	pollBase      = 30 * time.Second
	pollCap       = 300 * time.Second
	pollJitterMax = 10 * time.Second
)

// annotateOp is the long-running annotation handle the poll loop drives.
type annotateOp interface {
	Poll(ctx context.Context, opts ...gax.CallOption) (*videointelligencepb.AnnotateVideoResponse, error)
	Done() bool
}

// VideoDetector runs TEXT_DETECTION through the Video Intelligence API.
type VideoDetector struct {
	client *videointelligence.Client
	log    *slog.Logger
	wait   func(attempt int) time.Duration
}

// NewVideoDetector creates a Video Intelligence backed text detector.
func NewVideoDetector(ctx context.Context, log *slog.Logger) (*VideoDetector, error) {
	if log == nil {
		log = slog.Default()
	}
	client, err := videointelligence.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create video intelligence client: %w", err)
	}
	return &VideoDetector{client: client, log: log, wait: pollWait}, nil
}

// Close releases the underlying client.
func (d *VideoDetector) Close() error {
	return d.client.Close()
}

// DetectText starts a text-detection operation on the staged video and
// polls until it completes. Transient poll failures are retried
// indefinitely; a confirmed failed operation, like cancellation, ends
// the loop. Detected texts are filtered to those whose median segment
// confidence meets minConfidence.
func (d *VideoDetector) DetectText(ctx context.Context, remoteURI string, minConfidence float64) ([]string, error) {
	op, err := d.client.AnnotateVideo(ctx, &videointelligencepb.AnnotateVideoRequest{
		InputUri: remoteURI,
		Features: []videointelligencepb.Feature{videointelligencepb.Feature_TEXT_DETECTION},
	})
	if err != nil {
		return nil, fmt.Errorf("start annotation for %s: %w", remoteURI, err)
	}

	resp, err := d.await(ctx, remoteURI, op)
	if err != nil {
		return nil, err
	}

	results := resp.GetAnnotationResults()
	if len(results) == 0 {
		return nil, nil
	}
	annotations := make([]TextAnnotation, 0, len(results[0].GetTextAnnotations()))
	for _, ta := range results[0].GetTextAnnotations() {
		segments := ta.GetSegments()
		confidences := make([]float64, 0, len(segments))
		for _, seg := range segments {
			confidences = append(confidences, float64(seg.GetConfidence()))
		}
		annotations = append(annotations, TextAnnotation{Text: ta.GetText(), Confidences: confidences})
	}
	return FilterByConfidence(annotations, minConfidence), nil
}

// await polls the operation until it completes. Poll reports a
// completed-but-failed operation with a non-nil error and Done true;
// only that combination is final. Any other poll error is transient and
// retried without bound.
func (d *VideoDetector) await(ctx context.Context, remoteURI string, op annotateOp) (*videointelligencepb.AnnotateVideoResponse, error) {
	for attempt := 0; ; attempt++ {
		select {
		case <-time.After(d.wait(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		resp, err := op.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if op.Done() {
				return nil, fmt.Errorf("annotation failed for %s: %w", remoteURI, err)
			}
			d.log.Debug("annotation poll failed, retrying", "uri", remoteURI, "attempt", attempt, "error", err)
			continue
		}
		if op.Done() {
			return resp, nil
		}
	}
}

// pollWait computes the capped exponential wait before poll attempt i.
func pollWait(attempt int) time.Duration {
	if attempt > 8 {
		return pollCap
	}
	wait := pollBase + time.Duration(1<<attempt)*time.Second + rand.N(pollJitterMax)
	if wait > pollCap {
		return pollCap
	}
	return wait
}
