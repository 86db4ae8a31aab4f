package realtime

import (
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/domain"
)

type Kind string

const (
	KindConnection         Kind = "connection"
	KindHeartbeat          Kind = "heartbeat"
	KindSOSAlert           Kind = "sos_alert"
	KindWellnessUpdate     Kind = "wellness_update"
	KindActivityStarted    Kind = "activity_started"
	KindChatMessage        Kind = "chat_message"
	KindSystemNotification Kind = "system_notification"
)

var knownKinds = map[Kind]struct{}{
	KindConnection:         {},
	KindHeartbeat:          {},
	KindSOSAlert:           {},
	KindWellnessUpdate:     {},
	KindActivityStarted:    {},
	KindChatMessage:        {},
	KindSystemNotification: {},
}

// Kinds lists every recognized event type.
func Kinds() []Kind {
	return []Kind{
		KindConnection,
		KindHeartbeat,
		KindSOSAlert,
		KindWellnessUpdate,
		KindActivityStarted,
		KindChatMessage,
		KindSystemNotification,
	}
}

func (k Kind) Valid() bool {
	_, ok := knownKinds[k]
	return ok
}

// Event is the unit of broadcast. Timestamp is milliseconds since the epoch
// and is always assigned by the bus, never by the producer.
type Event struct {
	Kind      Kind           `json:"type"`
	Payload   map[string]any `json:"data"`
	Timestamp int64          `json:"timestamp"`
	OriginID  string         `json:"origin_id,omitempty"`
}

func (e Event) Validate() error {
	if e.Kind == "" {
		return domain.ErrEventKindRequired
	}
	if !e.Kind.Valid() {
		return domain.ErrEventKindUnknown
	}
	return nil
}
