package amqp

import (
	"encoding/json"
	"time"
)

// ExpenseEventMessage carries an expense mutation event to the audit
// worker. It holds only identifiers; the worker does not need the full
// record to write the audit trail.
type ExpenseEventMessage struct {
	Event     string    `json:"event"`
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEventMessage(event, id, owner string) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		Event:     event,
		ID:        id,
		Owner:     owner,
		Timestamp: time.Now(),
	}
}

func (m *ExpenseEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseEventMessageFromJSON(data []byte) (*ExpenseEventMessage, error) {
	var msg ExpenseEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
