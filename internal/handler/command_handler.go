package handler

import (
	"net/http"
	"strings"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/command"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/middleware"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/service"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/errors"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/logger"
)

// CommandRequest is the body of POST /api/commands
type CommandRequest struct {
	Text string `json:"text"`
}

// CommandResponse carries the chat reply a command produced
type CommandResponse struct {
	Reply string `json:"reply"`
}

// CommandHandler runs chat commands over HTTP. Callers carrying admin
// credentials may run the mutating commands.
type CommandHandler struct {
	commands service.CommandService
	logger   *logger.Logger
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(commands service.CommandService, log *logger.Logger) *CommandHandler {
	return &CommandHandler{
		commands: commands,
		logger:   log.Named("commands"),
	}
}

// Execute handles POST /api/commands
func (h *CommandHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, r, errors.NewValidationError("text is required", nil), h.logger)
		return
	}

	_, authorized := middleware.GetAdmin(r.Context())
	cmd := h.commands.Parse(req.Text, authorized)
	if unknown, ok := cmd.(command.Unknown); ok {
		respondError(w, r, errors.NewUnknownCommandError(unknown.Text), h.logger)
		return
	}

	reply, err := h.commands.Execute(r.Context(), cmd)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}
	respondData(w, http.StatusOK, CommandResponse{Reply: reply})
}
