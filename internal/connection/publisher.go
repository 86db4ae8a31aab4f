package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/saturnino-fabrica-de-software/soukhyam/internal/realtime"
)

const (
	eventsPath            = "/v1/realtime/events"
	defaultPublishTimeout = 10 * time.Second
)

// Publisher submits events to the ingest endpoint. It shares nothing with
// the subscription side.
type Publisher struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

func NewPublisher(baseURL string, client *http.Client) *Publisher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Publisher{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		timeout: defaultPublishTimeout,
	}
}

type publishRequest struct {
	Type     realtime.Kind  `json:"type"`
	Data     map[string]any `json:"data"`
	OriginID string         `json:"origin_id,omitempty"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *Publisher) Publish(ctx context.Context, e realtime.Event) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	body, err := json.Marshal(publishRequest{
		Type:     e.Kind,
		Data:     e.Payload,
		OriginID: e.OriginID,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+eventsPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error.Code != "" {
			return fmt.Errorf("%w: status %d: %s: %s", ErrUnexpectedReply, resp.StatusCode, eb.Error.Code, eb.Error.Message)
		}
		return fmt.Errorf("%w: status %d", ErrUnexpectedReply, resp.StatusCode)
	}

	return nil
}
