package domain

import (
	"encoding/json"
	"time"
)

// Event is a telemetry event as emitted to OTel logs and serialized onto Kafka.
type Event struct {
	AccountID int64           `json:"accountId,omitempty"` // 0 for unauthenticated requests
	EventType string          `json:"eventType"`
	Source    string          `json:"source"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
