package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/milkway/milkway/internal/domain/model"
	"github.com/milkway/milkway/internal/usecase"
)

// HTTPSink posts notifications to an external webhook. Delivery is best
// effort: a failed post is logged and dropped, never retried, so the
// reconciliation path stays unaffected by a slow or absent receiver.
type HTTPSink struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// payload mirrors the JSON body posted to the notification receiver.
type payload struct {
	Type           string `json:"type"`
	SubscriptionID int64  `json:"subscription_id"`
	Date           string `json:"date"`
	Detail         string `json:"detail,omitempty"`
}

// NewHTTPSink creates an HTTP notification sink with default timeout.
func NewHTTPSink(baseURL string, logger *slog.Logger) (*HTTPSink, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse notify url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("notify url must use http or https scheme")
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("notify url must have a host")
	}
	return &HTTPSink{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Emit posts the notification to the receiver's /api/notifications endpoint.
func (s *HTTPSink) Emit(ctx context.Context, n model.Notification) {
	endpoint := *s.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/notifications")

	body, err := json.Marshal(payload{
		Type:           string(n.Type),
		SubscriptionID: n.SubscriptionID,
		Date:           n.Date.Format(time.DateOnly),
		Detail:         n.Detail,
	})
	if err != nil {
		s.logger.Error("encode notification", slog.String("error", err.Error()))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		s.logger.Error("build notification request", slog.String("error", err.Error()))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("post notification failed",
			slog.String("type", string(n.Type)),
			slog.Int64("subscription", n.SubscriptionID),
			slog.String("error", err.Error()),
		)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		respBody, _ := io.ReadAll(resp.Body)
		s.logger.Error("notification rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(respBody)),
		)
	}
}

// NopSink discards notifications. Used when no receiver is configured.
type NopSink struct{}

// Emit does nothing.
func (NopSink) Emit(context.Context, model.Notification) {}

var _ usecase.Notifier = (*HTTPSink)(nil)
var _ usecase.Notifier = NopSink{}
