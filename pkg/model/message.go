package model

// Message is a durable chat message as persisted by the history store and as
// delivered on the wire. The id is store-assigned and monotonically orderable
// within a room; it is serialized as a decimal string so clients that parse
// JSON numbers as floats never lose precision. ts is milliseconds since epoch.
type Message struct {
	ID     int64  `json:"id,string"`
	RoomID string `json:"-"`
	From   string `json:"from"`
	Text   string `json:"text"`
	TS     int64  `json:"ts"`
	Read   bool   `json:"read"`
}
