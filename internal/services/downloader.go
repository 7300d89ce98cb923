package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Downloader fetches private Slack file content with bearer authorization.
type Downloader struct {
	HTTPClient *http.Client
	MaxBytes   int64
}

func NewDownloader(timeout time.Duration, maxMB int64) *Downloader {
	return &Downloader{
		HTTPClient: &http.Client{Timeout: timeout},
		MaxBytes:   maxMB * 1024 * 1024,
	}
}

// Fetch returns the full response body of url. Any status other than 200 is a
// failure.
func (d *Downloader) Fetch(ctx context.Context, url string, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	client := d.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http %d", ErrDownloadFailed, resp.StatusCode)
	}

	var r io.Reader = resp.Body
	if d.MaxBytes > 0 {
		r = io.LimitReader(resp.Body, d.MaxBytes+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if d.MaxBytes > 0 && int64(len(b)) > d.MaxBytes {
		return nil, ErrDownloadTooLarge
	}
	downloadBytesTotal.Add(float64(len(b)))
	return b, nil
}
