package events

import (
	"encoding/json"
	"time"

	"expenses/internal/core"
)

// Actions carried by ExpenseChangedMessage.
const (
	ActionAdd    = "add"
	ActionUpdate = "update"
	ActionRemove = "remove"
	ActionClear  = "clear"
)

// ExpenseChangedMessage announces a mutation that has already been persisted.
// Price is the decimal text form; it is empty for remove and clear.
type ExpenseChangedMessage struct {
	Action    string    `json:"action"`
	Name      string    `json:"name,omitempty"`
	Price     string    `json:"price,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseChangedMessage builds a message stamped with the current time
func NewExpenseChangedMessage(action string, e core.Expense) *ExpenseChangedMessage {
	msg := &ExpenseChangedMessage{
		Action:    action,
		Name:      e.Name,
		Timestamp: time.Now(),
	}
	if action == ActionAdd || action == ActionUpdate {
		msg.Price = core.FormatPrice(e.Price)
	}
	return msg
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseChangedMessageFromJSON creates a message from JSON bytes
func ExpenseChangedMessageFromJSON(data []byte) (*ExpenseChangedMessage, error) {
	var msg ExpenseChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
