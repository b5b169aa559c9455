package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/service"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/errors"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/logger"
)

// HeaderSignature carries the HMAC of the webhook body
const HeaderSignature = "X-Line-Signature"

// WebhookHandler receives LINE webhook deliveries
type WebhookHandler struct {
	events        service.EventService
	channelSecret string
	logger        *logger.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(events service.EventService, channelSecret string, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		events:        events,
		channelSecret: channelSecret,
		logger:        log.Named("webhook"),
	}
}

// Handle handles POST /api/webhook. Once the signature checks out the
// response is always 200 so LINE does not redeliver.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	// Without a secret nothing verifies
	if h.channelSecret == "" || r.Header.Get(HeaderSignature) == "" {
		h.rejectSignature(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	cb, err := webhook.ParseRequest(h.channelSecret, r)
	if err != nil {
		if stderrors.Is(err, webhook.ErrInvalidSignature) {
			h.rejectSignature(w, r)
			return
		}
		respondError(w, r, errors.NewValidationError("Invalid webhook payload", nil), h.logger)
		return
	}

	failed := h.events.HandleEvents(r.Context(), cb.Events)
	h.logger.WithFields(map[string]interface{}{
		"events": len(cb.Events),
		"failed": failed,
	}).Debug("Webhook processed")

	respondJSON(w, http.StatusOK, Envelope{Success: true})
}

func (h *WebhookHandler) rejectSignature(w http.ResponseWriter, r *http.Request) {
	h.logger.WithField("remote_addr", r.RemoteAddr).Warn("Invalid webhook signature")
	respondError(w, r, errors.NewAuthenticationError("Invalid signature"), h.logger)
}
