package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"
)

// Publisher copies a finished render somewhere shareable and returns its URL.
type Publisher interface {
	Publish(ctx context.Context, localPath string) (string, error)
}

// GCSPublisher uploads renders to a Cloud Storage bucket.
type GCSPublisher struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSPublisher connects with application default credentials.
func NewGCSPublisher(ctx context.Context, bucket, prefix string) (*GCSPublisher, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSPublisher{client: client, bucket: bucket, prefix: prefix}, nil
}

// ObjectName returns the object a local file is uploaded to.
func (p *GCSPublisher) ObjectName(localPath string) string {
	return path.Join(p.prefix, filepath.Base(localPath))
}

func (p *GCSPublisher) Publish(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	name := p.ObjectName(localPath)
	w := p.client.Bucket(p.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "video/mp4"
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	// Close finalizes the object.
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", name, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", p.bucket, name), nil
}

// Close releases the storage client.
func (p *GCSPublisher) Close() error {
	return p.client.Close()
}

// PublishingRenderer hands every local render to a Publisher.
type PublishingRenderer struct {
	Renderer  Renderer
	Publisher Publisher
}

func (r PublishingRenderer) Render(ctx context.Context, req Request) (Result, error) {
	res, err := r.Renderer.Render(ctx, req)
	if err != nil || r.Publisher == nil || res.OutputPath == "" {
		return res, err
	}
	url, err := r.Publisher.Publish(ctx, res.OutputPath)
	if err != nil {
		return Result{}, fmt.Errorf("publish render: %w", err)
	}
	res.URL = url
	return res, nil
}
