package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/timvideos/fwfetch/internal/logger"
	"github.com/timvideos/fwfetch/internal/utils"
)

const maxBodyBytes = 16 << 20

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type DefaultHTTPClient struct{ *http.Client }

func NewHTTPClient(timeout time.Duration) *DefaultHTTPClient {
	return &DefaultHTTPClient{Client: &http.Client{Timeout: timeout}}
}

// Fetcher issues the tool's GET requests with a fixed User-Agent.
type Fetcher struct {
	Client    HTTPClient
	UserAgent string
}

func NewFetcher(client HTTPClient, userAgent string) *Fetcher {
	if client == nil {
		client = NewHTTPClient(30 * time.Second)
	}
	return &Fetcher{Client: client, UserAgent: userAgent}
}

type Response struct {
	Status int
	Body   []byte
}

func (r Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Get returns the body whatever the status code; callers decide what a
// non-2xx payload means.
func (f *Fetcher) Get(ctx context.Context, url string) (Response, error) {
	resp, err := f.do(ctx, url)
	if err != nil {
		return Response{}, err
	}
	defer utils.Try(resp.Body.Close)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Response{}, fmt.Errorf("failed to read response from %s: %w", url, err)
	}

	logger.Debug("GET %s -> %d (%s)", url, resp.StatusCode, utils.HumanSize(int64(len(body))))
	return Response{Status: resp.StatusCode, Body: body}, nil
}

// Download writes the body of url to dst through a temporary file, so an
// interrupted transfer never leaves a truncated dst behind.
func (f *Fetcher) Download(ctx context.Context, url, dst string, maxSize int64) (int64, error) {
	resp, err := f.do(ctx, url)
	if err != nil {
		return 0, err
	}
	defer utils.Try(resp.Body.Close)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("download %s: unexpected status %d", url, resp.StatusCode)
	}

	var src io.Reader = resp.Body
	if maxSize > 0 {
		src = io.LimitReader(resp.Body, maxSize)
	}

	n, err := utils.WriteFileAtomic(dst+".part", dst, src)
	if err != nil {
		return n, fmt.Errorf("write %s: %w", dst, err)
	}
	return n, nil
}

func (f *Fetcher) do(ctx context.Context, rawURL string) (*http.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parsed, err := utils.ParseSecureURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	return resp, nil
}
