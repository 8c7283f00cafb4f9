package model

import (
	"encoding/json"
	"testing"
)

func TestMessageWireShape(t *testing.T) {
	raw, err := json.Marshal(Message{ID: 123, RoomID: "r1", From: "alice", Text: "hi", TS: 456, Read: false})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	for _, key := range []string{"id", "from", "text", "ts", "read"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("wire message missing %q field", key)
		}
	}
	if _, ok := fields["roomId"]; ok {
		t.Error("room id leaked onto the wire")
	}
	// Ids travel as strings so float-based JSON parsers keep full precision.
	if string(fields["id"]) != `"123"` {
		t.Errorf("id serialized as %s, want \"123\"", fields["id"])
	}
	if string(fields["ts"]) != "456" {
		t.Errorf("ts serialized as %s, want 456", fields["ts"])
	}
}

func TestEncodeEnvelopeRoundTrip(t *testing.T) {
	frame, err := EncodeEnvelope(EventMessageReadAck, MessageReadAck{MessageID: 7, By: "bob", TS: 99})
	if err != nil {
		t.Fatalf("EncodeEnvelope: %v", err)
	}

	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		t.Fatalf("Unmarshal envelope: %v", err)
	}
	if env.Event != EventMessageReadAck {
		t.Errorf("event = %q, want %q", env.Event, EventMessageReadAck)
	}

	var ack MessageReadAck
	if err := json.Unmarshal(env.Data, &ack); err != nil {
		t.Fatalf("Unmarshal payload: %v", err)
	}
	if ack.MessageID != 7 || ack.By != "bob" || ack.TS != 99 {
		t.Errorf("round-tripped ack = %+v", ack)
	}
}

func TestMessageReadPayloadRejectsBlankID(t *testing.T) {
	var p MessageReadPayload
	if err := json.Unmarshal([]byte(`{"roomId":"r1","messageId":""}`), &p); err == nil {
		t.Error("blank messageId decoded without error")
	}
}
