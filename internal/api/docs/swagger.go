package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// EventFrame is one JSON object carried by a "data:" line of the stream
type EventFrame struct {
	Type      string         `json:"type" example:"sos_alert"`
	Data      map[string]string `json:"data"`
	Timestamp int64          `json:"timestamp" example:"1735689600000"`
	OriginID  string         `json:"origin_id,omitempty" example:"student-42"`
}

// PublishEventRequest is the body of an event submission
type PublishEventRequest struct {
	Type     string         `json:"type" example:"wellness_update"`
	Data     map[string]string `json:"data"`
	OriginID string         `json:"origin_id,omitempty" example:"student-42"`
}

// PublishEventResponse acknowledges a broadcast
type PublishEventResponse struct {
	Success bool `json:"success" example:"true"`
}

// ChatMessage is one conversation turn
type ChatMessage struct {
	Role    string `json:"role" example:"user"`
	Content string `json:"content" example:"I have three exams this week and can't sleep"`
}

// ChatRequest is the body of a chat turn
type ChatRequest struct {
	SessionID string        `json:"session_id" example:"session-7f3a"`
	Messages  []ChatMessage `json:"messages"`
	Language  string        `json:"language" example:"en"`
}

// ChatResponse is the companion reply
type ChatResponse struct {
	Message   string `json:"message" example:"That sounds like a lot to carry at once."`
	Emergency bool   `json:"emergency" example:"false"`
	AlertID   string `json:"alert_id,omitempty" example:"0192f0c4-7c1e-7a3b-9b2f-3f6a1c2d4e5f"`
}

// AlertResponse is a crisis alert record
type AlertResponse struct {
	ID             string `json:"id" example:"0192f0c4-7c1e-7a3b-9b2f-3f6a1c2d4e5f"`
	SubjectID      string `json:"subject_id" example:"student-42"`
	Message        string `json:"message" example:"Emergency support needed"`
	Status         string `json:"status" example:"active"`
	CreatedAt      string `json:"created_at" example:"2025-01-01T00:00:00Z"`
	AcknowledgedAt string `json:"acknowledged_at,omitempty" example:"2025-01-01T00:01:00Z"`
	ResolvedAt     string `json:"resolved_at,omitempty" example:"2025-01-01T00:05:00Z"`
}

// AlertListResponse lists alerts newest first
type AlertListResponse struct {
	Alerts []AlertResponse `json:"alerts"`
	Total  int             `json:"total" example:"1"`
}

// SOSRequest is the body of an explicit SOS
type SOSRequest struct {
	SubjectID string `json:"subject_id" example:"student-42"`
	Message   string `json:"message,omitempty" example:"Emergency support needed"`
}

// SOSResponse reports the created alert and whether it reached live dashboards
type SOSResponse struct {
	Alert     AlertResponse `json:"alert"`
	Broadcast bool          `json:"broadcast" example:"true"`
}

// HealthResponse is returned by the probes
type HealthResponse struct {
	Status       string `json:"status" example:"ready"`
	Version      string `json:"version,omitempty" example:"0.1.0"`
	Subscribers  int    `json:"subscribers,omitempty" example:"3"`
	ChatProvider string `json:"chat_provider,omitempty" example:"mock"`
}

var (
	errInternal    = response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error")
	errRateLimited = response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Rate limit exceeded, please try again later"}, "429", "Too Many Requests")
	errBadRequest  = response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request"}, "400", "Bad Request")
)

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Soukhyam Realtime API",
		Version:     "v1.0.0",
		Description: "Realtime event distribution, companion chat and crisis escalation for the Soukhyam student wellness platform",
		Host:        "localhost:3000",
		Path:        "/",
	})

	alertIDParam := parameter.StrParam("id", parameter.Path, parameter.WithDescription("Alert identifier (UUID)"))

	endpoints := []*endpoint.EndPoint{
		// Realtime endpoints

		// GET /v1/realtime/stream - Subscribe
		endpoint.New(
			endpoint.GET,
			"/v1/realtime/stream",
			endpoint.WithTags("Realtime"),
			endpoint.WithSummary("Subscribe to realtime events"),
			endpoint.WithDescription("Opens a text/event-stream. The first frame is a connection event; a heartbeat frame follows every 30 seconds. Every accepted publish is delivered to every open stream in the same order."),
			endpoint.WithProduce([]mime.MIME{mime.MIME("text/event-stream")}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EventFrame{}, "200", "Event stream"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "REALTIME_UNAVAILABLE", Message: "Realtime updates are shutting down"}, "503", "Service Unavailable"),
			}),
		),

		// POST /v1/realtime/events - Publish
		endpoint.New(
			endpoint.POST,
			"/v1/realtime/events",
			endpoint.WithTags("Realtime"),
			endpoint.WithSummary("Publish an event"),
			endpoint.WithDescription("Broadcasts one event to every open stream. The server assigns the timestamp."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(PublishEventRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(PublishEventResponse{}, "200", "Event broadcast"),
			}),
			endpoint.WithErrors([]response.Response{
				errBadRequest,
				response.New(ErrorResponse{Code: "EVENT_KIND_REQUIRED", Message: "Event type is required"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "EVENT_KIND_UNKNOWN", Message: "Event type is not recognized"}, "422", "Unprocessable Entity"),
				errRateLimited,
				errInternal,
			}),
		),

		// Chat endpoints

		// POST /v1/chat - Chat turn
		endpoint.New(
			endpoint.POST,
			"/v1/chat",
			endpoint.WithTags("Chat"),
			endpoint.WithSummary("Send a chat turn"),
			endpoint.WithDescription("Answers the latest user message. Messages containing a crisis phrase receive a fixed safety response with emergency=true and raise an alert; the model is not called for them."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(ChatRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ChatResponse{}, "200", "Reply"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_CONVERSATION", Message: "Conversation must end with a non-empty user message"}, "400", "Bad Request"),
				errRateLimited,
				response.New(ErrorResponse{Code: "CHAT_UNAVAILABLE", Message: "I'm having trouble connecting right now"}, "503", "Service Unavailable"),
			}),
		),

		// Alert endpoints

		// GET /v1/alerts - List alerts
		endpoint.New(
			endpoint.GET,
			"/v1/alerts",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("List alerts"),
			endpoint.WithDescription("Returns every alert, newest first."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AlertListResponse{}, "200", "Alerts"),
			}),
		),

		// POST /v1/alerts - Explicit SOS
		endpoint.New(
			endpoint.POST,
			"/v1/alerts",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("Raise an SOS"),
			endpoint.WithDescription("Creates an active alert and broadcasts it as a sos_alert event. The alert is created even when the broadcast fails; broadcast=false reports that case."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(SOSRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SOSResponse{}, "201", "Alert created"),
			}),
			endpoint.WithErrors([]response.Response{
				errBadRequest,
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
				errRateLimited,
			}),
		),

		// POST /v1/alerts/{id}/acknowledge
		endpoint.New(
			endpoint.POST,
			"/v1/alerts/{id}/acknowledge",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("Acknowledge an alert"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(alertIDParam),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AlertResponse{}, "200", "Alert acknowledged"),
			}),
			endpoint.WithErrors([]response.Response{
				errBadRequest,
				response.New(ErrorResponse{Code: "ALERT_NOT_FOUND", Message: "Alert not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INVALID_ALERT_TRANSITION", Message: "Alert cannot move to the requested status"}, "409", "Conflict"),
			}),
		),

		// POST /v1/alerts/{id}/resolve
		endpoint.New(
			endpoint.POST,
			"/v1/alerts/{id}/resolve",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("Resolve an alert"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(alertIDParam),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AlertResponse{}, "200", "Alert resolved"),
			}),
			endpoint.WithErrors([]response.Response{
				errBadRequest,
				response.New(ErrorResponse{Code: "ALERT_NOT_FOUND", Message: "Alert not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INVALID_ALERT_TRANSITION", Message: "Alert cannot move to the requested status"}, "409", "Conflict"),
			}),
		),

		// Probes

		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Alive"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithDescription("Reports the number of open streams and the configured chat provider."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Ready"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
