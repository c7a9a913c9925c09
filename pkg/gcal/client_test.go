package gcal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/salonflow-backend/pkg/errors"
)

func TestCreateEventPostsPayload(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "evt-remote-1",
			"status":  "confirmed",
			"updated": time.Now().UTC().Format(time.RFC3339),
		})
	}))
	defer server.Close()

	client, err := NewClient("token-abc",
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
		WithTimeZone("America/Caracas"),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	start := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	result, err := client.CreateEvent(context.Background(), Event{
		Summary:     "Haircut - Maria Perez",
		Description: "Booked through the portal",
		Start:       start,
		End:         start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	if result.ID != "evt-remote-1" {
		t.Fatalf("expected remote id evt-remote-1, got %q", result.ID)
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("expected POST, got %s", gotMethod)
	}
	if gotPath != "/calendars/primary/events" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotAuth != "Bearer token-abc" {
		t.Fatalf("unexpected authorization header %q", gotAuth)
	}

	startPayload, ok := gotBody["start"].(map[string]any)
	if !ok {
		t.Fatalf("missing start payload: %v", gotBody)
	}
	if startPayload["timeZone"] != "America/Caracas" {
		t.Fatalf("expected configured time zone, got %v", startPayload["timeZone"])
	}
	if startPayload["dateTime"] != start.Format(time.RFC3339) {
		t.Fatalf("unexpected start dateTime %v", startPayload["dateTime"])
	}
}

func TestUpdateEventPutsToEventPath(t *testing.T) {
	var gotMethod, gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "evt-remote-1", "status": "confirmed"})
	}))
	defer server.Close()

	client, err := NewClient("token-abc", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	start := time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)
	if _, err := client.UpdateEvent(context.Background(), "evt-remote-1", Event{
		Summary: "Haircut - Maria Perez",
		Start:   start,
		End:     start.Add(time.Hour),
	}); err != nil {
		t.Fatalf("update event: %v", err)
	}

	if gotMethod != http.MethodPut {
		t.Fatalf("expected PUT, got %s", gotMethod)
	}
	if gotPath != "/calendars/primary/events/evt-remote-1" {
		t.Fatalf("unexpected path %s", gotPath)
	}
}

func TestProviderErrorMapsToDependency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":503}}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewClient("token-abc", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	start := time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)
	_, err = client.CreateEvent(context.Background(), Event{
		Summary: "Haircut",
		Start:   start,
		End:     start.Add(time.Hour),
	})
	if err == nil {
		t.Fatal("expected provider failure to surface")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency code, got %s", typed.Code())
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	if _, err := NewClient("   "); err == nil {
		t.Fatal("expected error for blank token")
	}
}
