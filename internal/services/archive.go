package services

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
)

// ImageArchive keeps a copy of accepted photos outside Slack.
type ImageArchive interface {
	Store(ctx context.Context, fileID string, image []byte) (string, error)
	Remove(ctx context.Context, fileID string) error
}

// GCSArchive stores photos as files/<id>.jpg in a Cloud Storage bucket.
type GCSArchive struct {
	client *storage.Client
	bucket string
}

func NewGCSArchive(ctx context.Context, bucket string) (*GCSArchive, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive: storage client: %w", err)
	}
	return &GCSArchive{client: client, bucket: bucket}, nil
}

func (a *GCSArchive) Close() error {
	return a.client.Close()
}

func archiveObjectName(fileID string) string {
	return "files/" + fileID + ".jpg"
}

// Store uploads the image and returns its public object URL.
func (a *GCSArchive) Store(ctx context.Context, fileID string, image []byte) (string, error) {
	name := archiveObjectName(fileID)
	w := a.client.Bucket(a.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "image/jpeg"
	w.Metadata = map[string]string{"slackFileId": fileID}

	if _, err := w.Write(image); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", a.bucket, name), nil
}

// Remove deletes the archived copy; a missing object is not an error.
func (a *GCSArchive) Remove(ctx context.Context, fileID string) error {
	err := a.client.Bucket(a.bucket).Object(archiveObjectName(fileID)).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}
