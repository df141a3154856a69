package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/tableview/internal/core"
)

// maxResponseBytes caps a workbook returned by the remote service.
const maxResponseBytes = 64 << 20

// Client sends export requests to a remote export service. The service
// accepts the JSON form of core.ExportRequest and answers with the file.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client
	Now        func() time.Time
}

// NewClient returns a Client for endpoint. timeout bounds each request.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: timeout},
		Now:        time.Now,
	}
}

// Export implements core.Exporter.
func (c *Client) Export(ctx context.Context, req core.ExportRequest) (core.Artifact, error) {
	if len(req.Columns) == 0 {
		return core.Artifact{}, core.ErrNoColumns
	}

	body, err := json.Marshal(req)
	if err != nil {
		return core.Artifact{}, fmt.Errorf("%w: encode request: %w", core.ErrExportFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return core.Artifact{}, fmt.Errorf("%w: build request: %w", core.ErrExportFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", ContentTypeXLSX)

	start := time.Now()
	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return core.Artifact{}, fmt.Errorf("%w: %w", core.ErrExportFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return core.Artifact{}, fmt.Errorf("%w: remote status %d: %s",
			core.ErrExportFailed, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return core.Artifact{}, fmt.Errorf("%w: read response: %w", core.ErrExportFailed, err)
	}
	if len(data) > maxResponseBytes {
		return core.Artifact{}, fmt.Errorf("%w: response exceeds %d bytes", core.ErrExportFailed, maxResponseBytes)
	}

	slog.Debug("remote export complete",
		"endpoint", c.Endpoint,
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	created := c.now()
	filename := filenameFromResponse(resp)
	if filename == "" {
		filename = core.ExportFilename(req.Name, "xlsx", created)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = ContentTypeXLSX
	}

	return core.Artifact{
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
		CreatedAt:   created,
	}, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

func (c *Client) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// filenameFromResponse reads the filename parameter of Content-Disposition.
func filenameFromResponse(resp *http.Response) string {
	cd := resp.Header.Get("Content-Disposition")
	if cd == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(cd)
	if err != nil {
		return ""
	}
	return params["filename"]
}
