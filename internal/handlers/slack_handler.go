package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/slack-go/slack"

	"github.com/photomap/backend/internal/models"
	"github.com/photomap/backend/internal/services"
)

const maxSlackBodyBytes = 1 << 20

// FileEventHandler processes validated file events.
type FileEventHandler interface {
	HandleFileShared(ctx context.Context, ev models.FileSharedEvent) error
	HandleFileRemoved(ctx context.Context, ev models.FileRemovedEvent) error
}

// ActionHandler processes validated confirmation button clicks.
type ActionHandler interface {
	HandleAction(ctx context.Context, ev models.InteractiveActionEvent) error
}

// EventDispatcher runs work after the HTTP response has been sent.
type EventDispatcher interface {
	Go(ctx context.Context, name string, fn func(ctx context.Context))
}

// SlackHandler receives Events API and interactive message callbacks. Every
// accepted request is acknowledged right away; processing happens on the
// dispatcher.
type SlackHandler struct {
	verificationToken string
	signingSecret     string
	events            FileEventHandler
	actions           ActionHandler
	dispatch          EventDispatcher
	logger            *slog.Logger
}

func NewSlackHandler(verificationToken, signingSecret string, events FileEventHandler, actions ActionHandler, dispatch EventDispatcher, logger *slog.Logger) *SlackHandler {
	return &SlackHandler{
		verificationToken: verificationToken,
		signingSecret:     signingSecret,
		events:            events,
		actions:           actions,
		dispatch:          dispatch,
		logger:            logger.With("component", "slack_handler"),
	}
}

func (h *SlackHandler) Events(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	var env models.EventEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if !services.VerifyToken(h.verificationToken, env.Token) {
		h.logger.Warn("verification token mismatch", "type", env.Type)
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Forbidden"))
		return
	}

	switch env.Type {
	case models.EventTypeURLVerification:
		writeJSON(w, http.StatusOK, map[string]string{"challenge": env.Challenge})
		return
	case models.EventTypeCallback:
		h.dispatchEvent(r.Context(), env)
	default:
		h.logger.Debug("ignoring envelope", "type", env.Type)
	}
	w.WriteHeader(http.StatusOK)
}

func (h *SlackHandler) dispatchEvent(ctx context.Context, env models.EventEnvelope) {
	switch env.Event.Type {
	case models.EventFileShared:
		ev := models.FileSharedEvent{
			Token:  env.Token,
			UserID: env.Event.UserID,
			FileID: env.Event.FileID,
		}
		h.dispatch.Go(ctx, env.Event.Type, func(ctx context.Context) {
			_ = h.events.HandleFileShared(ctx, ev)
		})
	case models.EventFileUnshared, models.EventFileDeleted:
		ev := models.FileRemovedEvent{
			Token:  env.Token,
			Type:   env.Event.Type,
			FileID: env.Event.FileID,
		}
		h.dispatch.Go(ctx, env.Event.Type, func(ctx context.Context) {
			_ = h.events.HandleFileRemoved(ctx, ev)
		})
	default:
		h.logger.Debug("ignoring event", "event_type", env.Event.Type, "event_id", env.EventID)
	}
}

func (h *SlackHandler) Actions(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	form, err := url.ParseQuery(string(body))
	if err != nil || form.Get("payload") == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Missing payload"))
		return
	}

	var p models.InteractionPayload
	if err := json.Unmarshal([]byte(form.Get("payload")), &p); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid payload"))
		return
	}
	if !services.VerifyToken(h.verificationToken, p.Token) {
		h.logger.Warn("verification token mismatch", "type", p.Type)
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Forbidden"))
		return
	}
	if p.Type != models.InteractionTypeMessage || len(p.Actions) == 0 {
		h.logger.Debug("ignoring interaction", "type", p.Type, "actions", len(p.Actions))
		w.WriteHeader(http.StatusOK)
		return
	}

	ev := models.InteractiveActionEvent{
		Token:      p.Token,
		CallbackID: p.CallbackID,
		UserID:     p.User.ID,
		ChannelID:  p.Channel.ID,
		Action:     p.Actions[0].Name,
		Value:      p.Actions[0].Value,
	}
	h.dispatch.Go(r.Context(), "interactive_action", func(ctx context.Context) {
		_ = h.actions.HandleAction(ctx, ev)
	})
	w.WriteHeader(http.StatusOK)
}

// readBody reads the raw request body and, when a signing secret is set,
// checks the X-Slack-Signature header against it.
func (h *SlackHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSlackBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return nil, false
	}
	if h.signingSecret == "" {
		return body, true
	}

	sv, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		h.logger.Warn("signature headers rejected", "err", err)
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid signature"))
		return nil, false
	}
	if _, err := sv.Write(body); err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to verify signature"))
		return nil, false
	}
	if err := sv.Ensure(); err != nil {
		h.logger.Warn("signature mismatch", "err", err)
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid signature"))
		return nil, false
	}
	return body, true
}
