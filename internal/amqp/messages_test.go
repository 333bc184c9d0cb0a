package amqp

import (
	"testing"
	"time"
)

func TestExpenseSyncMessageRoundTrip(t *testing.T) {
	msg := NewExpenseSyncMessage(42, 3)
	if msg.ID != 42 || msg.Version != 3 {
		t.Fatalf("NewExpenseSyncMessage = %+v", msg)
	}
	if msg.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	decoded, err := ExpenseSyncMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if decoded.ID != msg.ID || decoded.Version != msg.Version {
		t.Fatalf("round trip mismatch: %+v vs %+v", decoded, msg)
	}
	if !decoded.Timestamp.Equal(msg.Timestamp.Truncate(time.Nanosecond)) {
		t.Fatalf("timestamp mismatch: %v vs %v", decoded.Timestamp, msg.Timestamp)
	}
}

func TestExpenseSyncMessageFromJSONInvalid(t *testing.T) {
	if _, err := ExpenseSyncMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed body")
	}
}
