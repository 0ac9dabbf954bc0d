// Package hub fans comparison change notifications out to websocket viewers.
// Viewers join a room named after the comparison they have open; a save or
// delete is delivered to that room only.
package hub

// Message is a pre-encoded text frame addressed to one room.
type Message struct {
	Room string
	Data []byte
}

// NewMessage creates a message for room from pre-encoded JSON bytes
func NewMessage(room string, data []byte) Message {
	return Message{Room: room, Data: data}
}
