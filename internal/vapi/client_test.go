package vapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_CreateCallSendsAuthAndAssistant(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/call" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"call-123","status":"queued"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test", "asst-1")
	resp, err := c.CreateCall(context.Background(), CreateCallRequest{
		Customer: Customer{Number: "+15550001111", Name: "Ada"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotBody["assistantId"] != "asst-1" {
		t.Fatalf("expected assistant id attached, got %v", gotBody["assistantId"])
	}
	if resp["id"] != "call-123" {
		t.Fatalf("expected raw response passthrough, got %v", resp)
	}
}

func TestClient_NonSuccessWrapsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream exploded"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test", "asst-1")
	_, err := c.CreateCall(context.Background(), CreateCallRequest{Customer: Customer{Number: "+1"}})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestClient_UnconfiguredFailsFast(t *testing.T) {
	c := NewClient("https://api.example", "", "")
	if c.Configured() {
		t.Fatalf("expected unconfigured client")
	}
	_, err := c.GetCall(context.Background(), "c1")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream without api key, got %v", err)
	}
}

func TestClient_ListPhoneNumbersReturnsArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/phone-number" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"number":"+15550002222"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test", "asst-1")
	out, err := c.ListPhoneNumbers(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	arr, ok := out.([]any)
	if !ok || len(arr) != 1 {
		t.Fatalf("expected one-element array, got %v", out)
	}
}
