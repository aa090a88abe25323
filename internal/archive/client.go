// Package archive talks to the shared transmission archive, a plain HTTP
// file host with a manifest index and one JSON document per transmission.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ruliana/technoir-transmission-generator/internal/errors"
	"github.com/ruliana/technoir-transmission-generator/internal/models"
)

// ErrUploadForbidden is returned when the archive rejects the upload
// credential.
var ErrUploadForbidden = errors.NewSentinel("archive rejected the upload credential")

// ManifestEntry describes one archived transmission without its content.
type ManifestEntry struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"createdAt"`
	Filename  string    `json:"filename"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger.With("source", "archive.Client"),
	}
}

// Manifest lists the archived transmissions, newest first as served.
func (c *Client) Manifest(ctx context.Context) ([]ManifestEntry, error) {
	body, err := c.get(ctx, c.baseURL+"/manifest.json")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var entries []ManifestEntry
	if err := json.NewDecoder(body).Decode(&entries); err != nil {
		return nil, errors.Wrap(err, "decode archive manifest")
	}
	return entries, nil
}

// Fetch downloads one archived transmission by its manifest filename.
func (c *Client) Fetch(ctx context.Context, filename string) (*models.Transmission, error) {
	body, err := c.get(ctx, c.baseURL+"/"+filename)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var tx models.Transmission
	if err := json.NewDecoder(body).Decode(&tx); err != nil {
		return nil, errors.Wrap(err, "decode archived transmission", slog.String("filename", filename))
	}
	return &tx, nil
}

// Upload publishes a transmission under its canonical filename. The archive
// requires a bearer credential for writes.
func (c *Client) Upload(ctx context.Context, tx *models.Transmission, credential string) error {
	payload, err := json.Marshal(tx)
	if err != nil {
		return errors.Wrap(err, "encode transmission for upload", slog.Int64("id", tx.ID))
	}

	url := c.baseURL + "/" + Filename(tx)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build upload request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "upload transmission", slog.Int64("id", tx.ID))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.Wrap(ErrUploadForbidden, "upload transmission", slog.Int64("id", tx.ID))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return errors.New("upload transmission: unexpected status",
			slog.Int64("id", tx.ID), slog.Int("status", resp.StatusCode))
	}

	c.logger.InfoContext(ctx, "uploaded transmission to archive",
		slog.Int64("id", tx.ID), slog.String("filename", Filename(tx)))
	return nil
}

// Filename is the canonical archive name for a transmission.
func Filename(tx *models.Transmission) string {
	return fmt.Sprintf("transmission-%d.json", tx.ID)
}

func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build archive request", slog.String("url", url))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "reach archive", slog.String("url", url))
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.New("archive returned unexpected status",
			slog.String("url", url), slog.Int("status", resp.StatusCode))
	}
	return resp.Body, nil
}
