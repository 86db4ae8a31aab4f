package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/soukhyam/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/domain"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/realtime"
)

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, e realtime.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(testLogger()),
	})
}

func newJSONRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, r io.Reader) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(r).Decode(&body))
	return body
}

func TestRealtimeHandler_Publish(t *testing.T) {
	t.Run("forwards event to ingest", func(t *testing.T) {
		publisher := new(MockEventPublisher)
		publisher.On("Publish", mock.Anything, realtime.Event{
			Kind:     realtime.KindWellnessUpdate,
			Payload:  map[string]any{"mood": "calm"},
			OriginID: "student-7",
		}).Return(nil)

		bus := realtime.NewBus()
		h := NewRealtimeHandler(context.Background(), realtime.NewStream(bus, time.Second, testLogger(), nil), publisher, testLogger())
		app := newTestApp()
		app.Post("/v1/realtime/events", h.Publish)

		resp, err := app.Test(newJSONRequest("POST", "/v1/realtime/events",
			`{"type":"wellness_update","data":{"mood":"calm"},"origin_id":"student-7"}`))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var body PublishResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Success)
		publisher.AssertExpectations(t)
	})

	t.Run("malformed json is a bad request", func(t *testing.T) {
		publisher := new(MockEventPublisher)
		bus := realtime.NewBus()
		h := NewRealtimeHandler(context.Background(), realtime.NewStream(bus, time.Second, testLogger(), nil), publisher, testLogger())
		app := newTestApp()
		app.Post("/v1/realtime/events", h.Publish)

		resp, err := app.Test(newJSONRequest("POST", "/v1/realtime/events", `{"type":`))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "BAD_REQUEST", decodeError(t, resp.Body).Error.Code)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("unknown kind is rejected without broadcast", func(t *testing.T) {
		bus := realtime.NewBus()
		sub, err := bus.Register()
		require.NoError(t, err)

		ingest := realtime.NewIngest(bus, testLogger())
		h := NewRealtimeHandler(context.Background(), realtime.NewStream(bus, time.Second, testLogger(), nil), ingest, testLogger())
		app := newTestApp()
		app.Post("/v1/realtime/events", h.Publish)

		resp, err := app.Test(newJSONRequest("POST", "/v1/realtime/events", `{"type":"gossip","data":{}}`))
		require.NoError(t, err)
		assert.Equal(t, 422, resp.StatusCode)
		assert.Equal(t, "EVENT_KIND_UNKNOWN", decodeError(t, resp.Body).Error.Code)
		assert.Empty(t, sub.Events())
	})

	t.Run("accepted event reaches subscribers", func(t *testing.T) {
		bus := realtime.NewBus()
		sub, err := bus.Register()
		require.NoError(t, err)

		ingest := realtime.NewIngest(bus, testLogger())
		h := NewRealtimeHandler(context.Background(), realtime.NewStream(bus, time.Second, testLogger(), nil), ingest, testLogger())
		app := newTestApp()
		app.Post("/v1/realtime/events", h.Publish)

		resp, err := app.Test(newJSONRequest("POST", "/v1/realtime/events",
			`{"type":"system_notification","data":{"message":"maintenance at 9"},"timestamp":42}`))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		select {
		case e := <-sub.Events():
			assert.Equal(t, realtime.KindSystemNotification, e.Kind)
			assert.Equal(t, "maintenance at 9", e.Payload["message"])
			assert.Greater(t, e.Timestamp, sub.ConnectedAt())
		default:
			t.Fatal("expected event on subscriber channel")
		}
	})
}

func TestRealtimeHandler_StreamAfterShutdown(t *testing.T) {
	bus := realtime.NewBus()
	bus.Close()

	h := NewRealtimeHandler(context.Background(), realtime.NewStream(bus, time.Second, testLogger(), nil), new(MockEventPublisher), testLogger())
	app := newTestApp()
	app.Get("/v1/realtime/stream", h.Stream)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/realtime/stream", nil))
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)
	assert.Equal(t, domain.ErrBusClosed.Code, decodeError(t, resp.Body).Error.Code)
}
