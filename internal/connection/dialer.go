package connection

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const streamPath = "/v1/realtime/stream"

// Dialer opens one stream subscription and returns its body.
type Dialer interface {
	Dial(ctx context.Context) (io.ReadCloser, error)
}

// HTTPDialer subscribes with a GET against the stream endpoint. The client
// must not carry a request timeout: streams stay open indefinitely and are
// ended through the context.
type HTTPDialer struct {
	BaseURL string
	Client  *http.Client
}

func (d *HTTPDialer) Dial(ctx context.Context) (io.ReadCloser, error) {
	url := strings.TrimSuffix(d.BaseURL, "/") + streamPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dial stream: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnexpectedReply, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return resp.Body, nil
}
