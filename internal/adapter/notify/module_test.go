package notify

import (
	"testing"

	"github.com/milkway/milkway/internal/config"
)

func TestNewSink(t *testing.T) {
	sink, err := newSink(sinkParams{Config: &config.Config{}, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sink.(NopSink); !ok {
		t.Fatalf("expected nop sink without address, got %T", sink)
	}

	sink, err = newSink(sinkParams{Config: &config.Config{NotifyAddress: "http://localhost:9090"}, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sink.(*HTTPSink); !ok {
		t.Fatalf("expected http sink, got %T", sink)
	}

	if _, err := newSink(sinkParams{Config: &config.Config{NotifyAddress: "://bad"}, Logger: discardLogger()}); err == nil {
		t.Fatal("expected error for bad address")
	}
}
