package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// userAgent is a realistic browser identity. Some directory-index hosts
// reject obviously scripted clients.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

// Client wraps HTTP operations for scraping listing pages and streaming
// downloads.
//
// Example usage:
//
//	client := httpx.NewClient()
//
//	// Fetch a listing page
//	html, err := client.GetString(ctx, "https://host/files/")
//
//	// Open a download stream
//	body, total, err := client.Open(ctx, fileURL)
type Client struct {
	pageClient   *http.Client
	streamClient *http.Client
}

// NewClient creates a client with a 30 second timeout for page fetches.
// Download streams carry no overall timeout since large files legitimately
// take longer; cancellation comes from the context.
func NewClient() *Client {
	return &Client{
		pageClient:   &http.Client{Timeout: 30 * time.Second},
		streamClient: &http.Client{},
	}
}

// GetString fetches a URL and returns the response body as a string.
// Used for listing pages.
func (c *Client) GetString(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.pageClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Open starts a download and returns the body stream along with the
// declared content length, or -1 when the server does not declare one.
// The caller owns the returned ReadCloser.
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	total := resp.ContentLength
	if total < 0 {
		total = -1
	}
	return resp.Body, total, nil
}

// FileSize returns the size of the resource at url via a HEAD request.
//
// Returns an error when the request fails or the server does not declare a
// Content-Length. Used by the external download strategy, which cannot read
// the length from its own stream.
func (c *Client) FileSize(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.pageClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("no Content-Length header for %s", url)
	}
	return resp.ContentLength, nil
}

// ProgressWriter wraps a writer and reports bytes written after every
// chunk, driving download telemetry.
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Written is the running byte count.
	Written int64

	// OnWrite is called after each write with the running total.
	OnWrite func(written int64)
}

// Write implements io.Writer.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnWrite != nil {
		pw.OnWrite(pw.Written)
	}
	return n, err
}
