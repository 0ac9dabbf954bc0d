// Package protocol defines the WebSocket messages exchanged with ergonomics
// clients: live analysis while markers are dragged, and change notifications
// for saved comparisons.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/teslashibe/go-moto-ergo/pkg/analysis"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Client → Server
	TypeAnalyze MessageType = "analyze" // Recompute a report for an input

	// Server → Client
	TypeReport            MessageType = "report"             // Analysis result
	TypeComparisonUpdated MessageType = "comparison_updated" // Saved comparison changed
	TypeComparisonDeleted MessageType = "comparison_deleted" // Saved comparison removed
	TypeError             MessageType = "error"              // Request could not be handled

	// Bidirectional
	TypePing MessageType = "ping"
	TypePong MessageType = "pong"
)

// Message is the envelope for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Seq       uint64          `json:"seq,omitempty"` // Echoed back so clients can drop stale replies
	Timestamp int64           `json:"ts,omitempty"`  // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to parse message: missing type")
	}
	return &msg, nil
}

// ErrorData describes a failed request
type ErrorData struct {
	Error string `json:"error"`
}

// ComparisonData carries a saved comparison's latest report
type ComparisonData struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Report *analysis.Report `json:"report,omitempty"`
}

// NewAnalyzeMessage creates an analyze request
func NewAnalyzeMessage(seq uint64, in analysis.Input) (*Message, error) {
	msg, err := NewMessage(TypeAnalyze, in)
	if err != nil {
		return nil, err
	}
	msg.Seq = seq
	return msg, nil
}

// NewReportMessage creates a report reply
func NewReportMessage(seq uint64, r analysis.Report) (*Message, error) {
	msg, err := NewMessage(TypeReport, r)
	if err != nil {
		return nil, err
	}
	msg.Seq = seq
	return msg, nil
}

// NewErrorMessage creates an error reply
func NewErrorMessage(seq uint64, err error) *Message {
	msg, _ := NewMessage(TypeError, ErrorData{Error: err.Error()})
	msg.Seq = seq
	return msg
}
