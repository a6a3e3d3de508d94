package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/milkway/milkway/internal/domain/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewHTTPSink(t *testing.T) {
	if _, err := NewHTTPSink("://bad", discardLogger()); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := NewHTTPSink("localhost:8080", discardLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
	if _, err := NewHTTPSink("ftp://example.com", discardLogger()); err == nil {
		t.Fatal("expected error for non-http scheme")
	}
	if _, err := NewHTTPSink("http://", discardLogger()); err == nil {
		t.Fatal("expected error for missing host")
	}
	if _, err := NewHTTPSink("http://localhost:8080", discardLogger()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEmitPostsPayload(t *testing.T) {
	var got payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.URL.Path != "/api/notifications" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sink, err := NewHTTPSink(server.URL, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sink.Emit(context.Background(), model.Notification{
		Type:           model.NotifyOccurrenceMissed,
		SubscriptionID: 7,
		Date:           time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC),
	})

	if got.Type != string(model.NotifyOccurrenceMissed) {
		t.Fatalf("unexpected type %q", got.Type)
	}
	if got.SubscriptionID != 7 {
		t.Fatalf("unexpected subscription %d", got.SubscriptionID)
	}
	if got.Date != "2025-03-05" {
		t.Fatalf("unexpected date %q", got.Date)
	}
}

func TestEmitToleratesFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	sink, err := NewHTTPSink(server.URL, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Rejected and unreachable receivers must both be silent failures.
	sink.Emit(context.Background(), model.Notification{Type: model.NotifyConflictDetected, SubscriptionID: 1})

	server.Close()
	sink.Emit(context.Background(), model.Notification{Type: model.NotifyConflictDetected, SubscriptionID: 1})
}

func TestNopSink(t *testing.T) {
	NopSink{}.Emit(context.Background(), model.Notification{})
}
