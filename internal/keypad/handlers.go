package keypad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/TeapotSmashers/keypad-calculator/internal/calculator"
	"github.com/TeapotSmashers/keypad-calculator/internal/handlers"
	"github.com/TeapotSmashers/keypad-calculator/internal/observability"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// maxKeys bounds the number of keys accepted in one request.
const maxKeys = 256

// maxBodyBytes bounds every JSON request body, and with it the text one
// request can append to a session.
const maxBodyBytes = 8 << 10

// tracer is the keypad's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("keypad")

// Handler serves the keypad endpoints backed by a session store.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// ---------------------------------------------------------------------------
// Session handlers
// ---------------------------------------------------------------------------

// CreateSession handles POST /calculator/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "keypad.session.create")
	defer span.End()

	sess := h.store.Create()

	span.SetAttributes(attribute.String("keypad.session.id", sess.ID))
	span.SetStatus(codes.Ok, "")

	logger.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("theme", string(sess.Theme)),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusCreated, newSessionResponse(sess))
}

// GetSession handles GET /calculator/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "keypad.session.get")
	defer span.End()

	sess, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		recordSessionError(ctx, span, logger, "get", err, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, newSessionResponse(sess))
}

// DeleteSession handles DELETE /calculator/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "keypad.session.delete")
	defer span.End()

	id := chi.URLParam(r, "id")
	if err := h.store.Delete(id); err != nil {
		recordSessionError(ctx, span, logger, "delete", err, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	logger.Info("session deleted",
		zap.String("session_id", id),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	w.WriteHeader(http.StatusNoContent)
}

// SetTheme handles PUT /calculator/sessions/{id}/theme
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "keypad.session.theme")
	defer span.End()

	var req ThemeRequest
	if !decodeBody(ctx, span, logger, "theme", w, r, &req) {
		return
	}

	theme, err := ParseTheme(req.Theme)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "theme", "invalid theme", err, http.StatusBadRequest, w)
		return
	}

	sess, err := h.store.Update(chi.URLParam(r, "id"), func(s Session) (Session, error) {
		s.Theme = theme
		return s, nil
	})
	if err != nil {
		recordSessionError(ctx, span, logger, "theme", err, w)
		return
	}

	span.SetAttributes(attribute.String("keypad.theme", string(theme)))
	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, newSessionResponse(sess))
}

// PressKeys handles POST /calculator/sessions/{id}/keys. It applies the keys
// in order to the session's calculator. Either every key is applied or the
// session is left untouched.
func (h *Handler) PressKeys(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "keypad.session.keys")
	defer span.End()

	keys, ok := decodeKeys(ctx, span, logger, "press", w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	span.SetAttributes(
		attribute.String("keypad.session.id", id),
		attribute.Int("keypad.keys.count", len(keys)),
	)

	sess, err := h.store.Update(id, func(s Session) (Session, error) {
		next, _, err := applyKeys(ctx, logger, s.Calculator, keys)
		if err != nil {
			return s, err
		}
		s.Calculator = next
		return s, nil
	})
	if err != nil {
		recordSessionError(ctx, span, logger, "press", err, w)
		return
	}

	span.SetAttributes(attribute.String("keypad.output", sess.Calculator.Output()))
	span.SetStatus(codes.Ok, "")

	logger.Info("keys applied",
		zap.String("session_id", id),
		zap.Int("keys", len(keys)),
		zap.String("output", sess.Calculator.Output()),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusOK, newSessionResponse(sess))
}

// ---------------------------------------------------------------------------
// Stateless evaluation
// ---------------------------------------------------------------------------

// Evaluate handles POST /calculator/evaluate. It replays the keys on a cleared
// calculator, creating a child span for every key, and returns the display
// after each one.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "keypad.evaluate")
	defer span.End()

	keys, ok := decodeKeys(ctx, span, logger, "evaluate", w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("keypad.keys.count", len(keys)))

	final, steps, err := applyKeys(ctx, logger, calculator.Calculator{}, keys)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "malformed number", err, http.StatusUnprocessableEntity, w)
		return
	}

	span.AddEvent("evaluate.complete", trace.WithAttributes(
		attribute.String("output", final.Output()),
		attribute.Int("total_keys", len(keys)),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("evaluation completed",
		zap.Int("keys", len(keys)),
		zap.String("output", final.Output()),
		zap.String("equation", final.Equation()),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusOK, EvaluateResponse{
		Steps:         steps,
		StateResponse: newStateResponse(final),
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func startSpan(r *http.Request, name string) (context.Context, trace.Span, *zap.Logger) {
	ctx := r.Context()
	ctx, span := tracer.Start(ctx, name,
		trace.WithAttributes(
			attribute.String("request.id", observability.RequestIDFromContext(ctx)),
		),
	)
	return ctx, span, observability.LoggerWithTrace(ctx)
}

// decodeBody decodes at most maxBodyBytes of JSON into dst. Oversized bodies
// get 413, anything else unreadable gets 400.
func decodeBody(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			observability.RecordError(ctx, span, logger, errorCounter, opName, "request body too large", err, http.StatusRequestEntityTooLarge, w)
			return false
		}
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, http.StatusBadRequest, w)
		return false
	}
	return true
}

func decodeKeys(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req KeysRequest
	if !decodeBody(ctx, span, logger, opName, w, r, &req) {
		return nil, false
	}

	switch {
	case len(req.Keys) == 0:
		observability.RecordError(ctx, span, logger, errorCounter, opName, "no keys provided", errors.New("keys array is empty"), http.StatusBadRequest, w)
		return nil, false
	case len(req.Keys) > maxKeys:
		observability.RecordError(ctx, span, logger, errorCounter, opName, "too many keys", fmt.Errorf("%d keys exceeds limit of %d", len(req.Keys), maxKeys), http.StatusBadRequest, w)
		return nil, false
	}
	return req.Keys, true
}

// recordSessionError maps store and calculator errors to HTTP statuses.
func recordSessionError(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, err error, w http.ResponseWriter) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		observability.RecordError(ctx, span, logger, errorCounter, opName, "session not found", err, http.StatusNotFound, w)
	case errors.Is(err, calculator.ErrMalformedNumber):
		observability.RecordError(ctx, span, logger, errorCounter, opName, "malformed number", err, http.StatusUnprocessableEntity, w)
	default:
		observability.RecordError(ctx, span, logger, errorCounter, opName, "internal error", err, http.StatusInternalServerError, w)
	}
}

// applyKeys presses keys in order starting from c. On error it returns the
// last good state together with the steps applied so far.
func applyKeys(ctx context.Context, logger *zap.Logger, c calculator.Calculator, keys []string) (calculator.Calculator, []StepResult, error) {
	steps := make([]StepResult, 0, len(keys))

	for i, raw := range keys {
		key := calculator.ParseKey(raw)

		// --- Child span per key ---
		_, keySpan := tracer.Start(ctx, "keypad.key."+key.Kind.String(),
			trace.WithAttributes(
				attribute.Int("keypad.key.index", i),
				attribute.String("keypad.key", raw),
				attribute.String("keypad.key.kind", key.Kind.String()),
			),
		)

		start := time.Now()
		next, err := c.Press(key)
		elapsed := float64(time.Since(start).Nanoseconds()) / 1e6 // ms

		if err != nil {
			keySpan.RecordError(err)
			keySpan.SetStatus(codes.Error, err.Error())
			keySpan.End()

			logger.Warn("key rejected",
				zap.Int("index", i),
				zap.String("key", raw),
				zap.Error(err),
			)
			return c, steps, fmt.Errorf("key %d (%q): %w", i, raw, err)
		}

		attrs := metric.WithAttributes(attribute.String("kind", key.Kind.String()))
		keysCounter.Add(ctx, 1, attrs)
		keyHistogram.Record(ctx, elapsed, attrs)

		if key.Kind == calculator.KeyEquals || key.Kind == calculator.KeyPercent {
			if result, ok := next.Result(); ok && !math.IsInf(result, 0) && !math.IsNaN(result) {
				resultGauge.Record(ctx, result)
			}
		}

		keySpan.SetAttributes(
			attribute.String("keypad.output", next.Output()),
			attribute.String("keypad.equation", next.Equation()),
		)
		keySpan.SetStatus(codes.Ok, "")
		keySpan.End()

		logger.Debug("key applied",
			zap.Int("index", i),
			zap.String("key", raw),
			zap.String("kind", key.Kind.String()),
			zap.String("output", next.Output()),
			zap.Float64("duration_ms", elapsed),
		)

		c = next
		steps = append(steps, StepResult{
			Key:      raw,
			Output:   next.Output(),
			Equation: next.Equation(),
		})
	}

	return c, steps, nil
}
