package amqp

import (
	"encoding/json"
	"time"
)

// Message kinds carried on the sync queue.
const (
	KindSync   = "sync"
	KindDelete = "delete"
)

// SyncMessage is the envelope for everything published to the sync queue.
// Sync messages carry only the transaction ID and version; the worker
// fetches the full row from the database. Delete messages carry the row
// data, since the row is already soft deleted by the time the worker runs.
type SyncMessage struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Version   int64     `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	// Delete payload: enough to find and remove the mirrored sheet row.
	Account     string `json:"account,omitempty"`
	Description string `json:"description,omitempty"`
	Amount      string `json:"amount,omitempty"`
	Date        string `json:"date,omitempty"`
}

// NewSyncMessage creates a sync message with just ID and version.
func NewSyncMessage(id string, version int64) *SyncMessage {
	return &SyncMessage{
		Kind:      KindSync,
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// NewDeleteMessage creates a delete message carrying the mirrored row data.
func NewDeleteMessage(id, account, description, amount, date string) *SyncMessage {
	return &SyncMessage{
		Kind:        KindDelete,
		ID:          id,
		Timestamp:   time.Now(),
		Account:     account,
		Description: description,
		Amount:      amount,
		Date:        date,
	}
}

// ToJSON converts the message to JSON bytes
func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
