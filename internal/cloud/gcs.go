package cloud

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cloud.google.com/go/storage"
)

// uploadChunkSize is ~100MB, sized for multi-hundred-MB video clips.
const uploadChunkSize = 100 * 1024 * 1024

// GCS is the Google Cloud Storage backed ObjectStore.
type GCS struct {
	client      *storage.Client
	userProject string
	log         *slog.Logger
}

// NewGCS creates a GCS object store. userProject, when non-empty, is
// attached to bucket handles for requester-pays billing.
func NewGCS(ctx context.Context, userProject string, log *slog.Logger) (*GCS, error) {
	if log == nil {
		log = slog.Default()
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{client: client, userProject: userProject, log: log}, nil
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}

func (g *GCS) bucket(name string) *storage.BucketHandle {
	h := g.client.Bucket(name)
	if g.userProject != "" {
		h = h.UserProject(g.userProject)
	}
	return h
}

// MoveIn uploads localPath to remoteURI, then deletes the local file.
func (g *GCS) MoveIn(ctx context.Context, localPath, remoteURI string) error {
	bucket, key, err := ParseURI(remoteURI)
	if err != nil {
		return err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer func() { _ = f.Close() }()

	w := g.bucket(bucket).Object(key).NewWriter(ctx)
	w.ChunkSize = uploadChunkSize
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload %s: %w", remoteURI, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload %s: %w", remoteURI, err)
	}
	g.log.Debug("uploaded", "local", localPath, "remote", remoteURI)

	if err := os.Remove(localPath); err != nil {
		return fmt.Errorf("remove local %s after upload: %w", localPath, err)
	}
	return nil
}

// Remove deletes the remote object.
func (g *GCS) Remove(ctx context.Context, remoteURI string) error {
	bucket, key, err := ParseURI(remoteURI)
	if err != nil {
		return err
	}
	if err := g.bucket(bucket).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", remoteURI, err)
	}
	return nil
}
