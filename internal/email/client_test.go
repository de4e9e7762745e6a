package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewResendClient_Defaults(t *testing.T) {
	client := NewResendClient("api-key", "", "noreply@unimalia.app")
	if client.APIKey != "api-key" {
		t.Errorf("APIKey = %q, want %q", client.APIKey, "api-key")
	}
	if client.BaseURL != "https://api.resend.com/emails" {
		t.Errorf("BaseURL = %q, want default", client.BaseURL)
	}
	if client.From != "noreply@unimalia.app" {
		t.Errorf("From = %q, want %q", client.From, "noreply@unimalia.app")
	}
	if client.HTTPClient == nil {
		t.Fatal("HTTPClient should be set")
	}
	if client.HTTPClient.Timeout != defaultTimeout {
		t.Errorf("HTTPClient.Timeout = %v, want %v", client.HTTPClient.Timeout, defaultTimeout)
	}
}

func TestSend_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want %q", r.Method, http.MethodPost)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("Authorization") != "Bearer test-api-key" {
			t.Errorf("Authorization = %q, want Bearer test-api-key", r.Header.Get("Authorization"))
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Decode body: %v", err)
		}
		if body["from"] != "noreply@unimalia.app" {
			t.Errorf("from = %v, want noreply@unimalia.app", body["from"])
		}
		if body["subject"] != "Your pet may have been found" {
			t.Errorf("subject = %v, want alert subject", body["subject"])
		}
		to, ok := body["to"].([]interface{})
		if !ok || len(to) != 1 || to[0] != "owner@example.com" {
			t.Errorf("to = %v, want [owner@example.com]", body["to"])
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer server.Close()

	client := NewResendClient("test-api-key", server.URL, "noreply@unimalia.app")
	err := client.Send(context.Background(), "owner@example.com", "Your pet may have been found", "<p>hello</p>")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestSend_MissingAPIKey(t *testing.T) {
	client := NewResendClient("", "", "noreply@unimalia.app")
	err := client.Send(context.Background(), "owner@example.com", "subject", "body")
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !strings.Contains(err.Error(), "API key not configured") {
		t.Errorf("error message = %q, want to contain 'API key not configured'", err.Error())
	}
}

func TestSend_Non2xxStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid recipient"}`))
	}))
	defer server.Close()

	client := NewResendClient("api-key", server.URL, "noreply@unimalia.app")
	err := client.Send(context.Background(), "bad", "subject", "body")
	if err == nil {
		t.Fatal("expected error for non-2xx status")
	}
	if !strings.Contains(err.Error(), "status=422") {
		t.Errorf("error message = %q, want to contain 'status=422'", err.Error())
	}
	if !strings.Contains(err.Error(), "invalid recipient") {
		t.Errorf("error message = %q, want to contain response body", err.Error())
	}
}

func TestSend_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewResendClient("api-key", server.URL, "noreply@unimalia.app")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Send(ctx, "owner@example.com", "subject", "body")
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
