package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"railcast-service/internal/domain/entity"
	"railcast-service/pkg/logger"

	"google.golang.org/api/option"
)

func TestGmailNotifierSendsRawMessage(t *testing.T) {
	var raw string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/users/me/messages/send") {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Raw string `json:"raw"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		raw = body.Raw
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg-1"}`))
	}))
	defer server.Close()

	notifier, err := NewGmailNotifier(context.Background(), "ops@example.com", "admin@example.com", logger.NewNopLogger(),
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewGmailNotifier failed: %v", err)
	}

	err = notifier.Notify(context.Background(), entity.Notification{Subject: "Train Data Updated", Body: "done"})
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	decoded, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("Raw message is not base64url: %v", err)
	}
	msg := string(decoded)
	if !strings.Contains(msg, "To: admin@example.com") || !strings.Contains(msg, "Subject: Train Data Updated") {
		t.Errorf("Unexpected message %q", msg)
	}
}

func TestGmailNotifierError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"insufficient scope"}}`))
	}))
	defer server.Close()

	notifier, err := NewGmailNotifier(context.Background(), "ops@example.com", "admin@example.com", logger.NewNopLogger(),
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewGmailNotifier failed: %v", err)
	}

	if err := notifier.Notify(context.Background(), entity.Notification{Subject: "s", Body: "b"}); err == nil {
		t.Error("Expected error from Gmail API, got nil")
	}
}
