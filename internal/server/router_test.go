package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/TeapotSmashers/keypad-calculator/internal/keypad"
	"github.com/TeapotSmashers/keypad-calculator/internal/observability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	observability.Logger = zap.NewNop()
	if err := keypad.InitMetrics(); err != nil {
		t.Fatalf("initializing keypad metrics: %v", err)
	}
	return NewRouter(keypad.NewHandler(keypad.NewStore(time.Minute, keypad.ThemeLight)))
}

func TestNewRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if body := w.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestNewRouterEvaluateSetsHeaderAndOmitsRequestIDInBody(t *testing.T) {
	router := newTestRouter(t)

	body := []byte(`{"keys":["2","+","3","="]}`)
	req := httptest.NewRequest(http.MethodPost, "/calculator/evaluate", bytes.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	requestID := w.Result().Header.Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected valid UUID in X-Request-ID, got %q: %v", requestID, err)
	}

	var payload map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}

	if _, ok := payload["request_id"]; ok {
		t.Fatal("did not expect request_id field in success JSON body")
	}

	if got, ok := payload["output"].(string); !ok || got != "5" {
		t.Fatalf("expected output 5, got %#v", payload["output"])
	}
}

func TestNewRouterMetricsExposeSessionGauge(t *testing.T) {
	router := newTestRouter(t)

	create := httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil)
	router.ServeHTTP(httptest.NewRecorder(), create)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !strings.Contains(w.Body.String(), "keypad_sessions_active") {
		t.Fatal("expected keypad_sessions_active in /metrics output")
	}
}
