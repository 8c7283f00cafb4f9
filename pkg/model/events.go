package model

import "encoding/json"

// Inbound event names (client intents).
const (
	EventJoin         = "join"
	EventSendMessage  = "send_message"
	EventTypingUpdate = "typing_update"
	EventTypingStatus = "typing_status"
	EventMessageRead  = "message_read"
)

// Outbound event names.
const (
	EventHistory            = "history"
	EventNewMessage         = "new_message"
	EventRemoteTypingUpdate = "remote_typing_update"
	EventRemoteTypingStatus = "remote_typing_status"
	EventMessageReadAck     = "message_read_ack"
)

// Typing status values.
const (
	StatusTyping  = "typing"
	StatusStopped = "stopped"
)

// Envelope frames every event on the wire, in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// EncodeEnvelope frames an outbound event for the wire.
func EncodeEnvelope(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// JoinPayload carries the join intent.
type JoinPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// SendMessagePayload carries the send_message intent.
type SendMessagePayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

// TypingUpdatePayload carries the typing_update intent (live draft preview).
type TypingUpdatePayload struct {
	RoomID string `json:"roomId"`
	Draft  string `json:"draft"`
}

// TypingStatusPayload carries the typing_status intent.
type TypingStatusPayload struct {
	RoomID string `json:"roomId"`
	Status string `json:"status"`
}

// MessageReadPayload carries the message_read intent.
type MessageReadPayload struct {
	RoomID    string `json:"roomId"`
	MessageID int64  `json:"messageId,string"`
}

// RemoteTypingUpdate is broadcast to a room when a member's draft changes.
type RemoteTypingUpdate struct {
	From  string `json:"from"`
	Draft string `json:"draft"`
	TS    int64  `json:"ts"`
}

// RemoteTypingStatus is broadcast when a member starts or stops typing.
type RemoteTypingStatus struct {
	From   string `json:"from"`
	Status string `json:"status"`
}

// MessageReadAck is broadcast when a member marks a message read.
type MessageReadAck struct {
	MessageID int64  `json:"messageId,string"`
	By        string `json:"by"`
	TS        int64  `json:"ts"`
}
