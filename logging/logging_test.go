package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetAndGet(t *testing.T) {
	defer Set(nil)

	if _, ok := Get().(Noop); !ok {
		t.Fatalf("expected the no-op default, got %T", Get())
	}

	logger := NewZerolog(zerolog.New(&bytes.Buffer{}))
	Set(logger)
	if _, ok := Get().(Zerolog); !ok {
		t.Errorf("expected the zerolog adapter, got %T", Get())
	}

	// Setting nil restores the no-op default
	Set(nil)
	if _, ok := Get().(Noop); !ok {
		t.Errorf("expected the no-op default, got %T", Get())
	}
}

func TestZerologAdapter(t *testing.T) {
	buffer := &bytes.Buffer{}
	adapter := NewZerolog(zerolog.New(buffer))

	adapter.Info("key granted", map[string]any{"grant_type": "request_key"})

	entry := map[string]any{}
	if err := json.Unmarshal(buffer.Bytes(), &entry); err != nil {
		t.Fatalf("could not decode log entry: %s", err)
	}
	if entry["level"] != "info" || entry["message"] != "key granted" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["grant_type"] != "request_key" {
		t.Errorf("expected the structured field to be present, got %v", entry)
	}
}

func TestZerologAdapterNilFields(t *testing.T) {
	buffer := &bytes.Buffer{}
	adapter := NewZerolog(zerolog.New(buffer))

	adapter.Debug("no fields", nil)
	adapter.Warn("no fields", nil)
	adapter.Error("no fields", nil)

	if buffer.Len() == 0 {
		t.Error("expected entries to be written")
	}
}
