// Package nps implements the survey endpoint: it accepts a Net Promoter
// Score submission from a browser and records it on a Zendesk ticket as an
// internal note.
package nps

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"npsbridge/internal/config"
	"npsbridge/internal/zendesk"
)

// Error codes returned in the "error" field of JSON responses.
const (
	CodeOriginForbidden     = "origin_forbidden"
	CodeMethodNotAllowed    = "method_not_allowed"
	CodeServerMisconfigured = "server_misconfigured"
	CodeInvalidJSON         = "invalid_json"
	CodeMissingFields       = "ticketId_and_score_required"
	CodeZendeskError        = "zendesk_error"
	CodeInternalError       = "internal_error"
)

// TicketUpdater applies an update to a Zendesk ticket.
type TicketUpdater interface {
	UpdateTicket(ctx context.Context, ticketID string, update zendesk.TicketUpdate) error
}

// Handler serves the survey endpoint. It holds no mutable state and is safe
// for concurrent use.
type Handler struct {
	cors         CORSPolicy
	fields       FieldIDs
	configured   bool
	maxBodyBytes int64
	tickets      TicketUpdater
}

// NewHandler creates a Handler from cfg that sends updates through tickets.
func NewHandler(cfg *config.Config, tickets TicketUpdater) *Handler {
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = config.DefaultMaxBodyBytes
	}
	return &Handler{
		cors: NewCORSPolicy(cfg.AllowedOrigins),
		fields: FieldIDs{
			NPS:     cfg.Zendesk.NPSFieldID,
			Why:     cfg.Zendesk.WhyFieldID,
			Improve: cfg.Zendesk.ImproveFieldID,
		},
		configured:   cfg.Zendesk.HasCredentials(),
		maxBodyBytes: maxBody,
		tickets:      tickets,
	}
}

// NewZendeskHandler wires a Handler to a Zendesk client built from cfg.
func NewZendeskHandler(cfg *config.Config) *Handler {
	client := zendesk.NewClient(zendesk.Config{
		BaseURL:  cfg.Zendesk.URL(),
		Email:    cfg.Zendesk.Email,
		APIToken: cfg.Zendesk.APIToken,
	})
	return NewHandler(cfg, client)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	origin := r.Header.Get("Origin")
	header := w.Header()
	setBaseHeaders(header)

	// Preflight always gets an Allow-Origin so the browser can read the
	// eventual rejection of the real request.
	if r.Method == http.MethodOptions {
		setAllowOrigin(header, origin)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if !h.cors.Allows(origin) {
		setAllowOrigin(header, origin)
		WriteError(w, http.StatusForbidden, CodeOriginForbidden)
		return
	}
	header.Set("Access-Control-Allow-Origin", origin)

	if r.Method != http.MethodPost {
		header.Set("Allow", "POST, OPTIONS")
		WriteError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed)
		return
	}

	if !h.configured {
		logger.Error().Msg("Zendesk credentials are not configured")
		WriteError(w, http.StatusInternalServerError, CodeServerMisconfigured)
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		logger.Warn().Err(err).Int("read_bytes", len(raw)).Msg("Request body read failed")
	}

	submission, err := ParseSubmission(raw)
	switch {
	case errors.Is(err, ErrInvalidJSON):
		WriteError(w, http.StatusBadRequest, CodeInvalidJSON)
		return
	case err != nil:
		WriteError(w, http.StatusBadRequest, CodeMissingFields)
		return
	}

	// A client that hangs up must not abort an update Zendesk may already
	// be applying; keep the request values, drop the cancellation.
	ctx := context.WithoutCancel(r.Context())
	err = h.tickets.UpdateTicket(ctx, submission.TicketID, submission.TicketUpdate(h.fields))
	if apiError, ok := zendesk.AsAPIError(err); ok {
		logger.Warn().
			Str("ticket_id", submission.TicketID).
			Int("status", apiError.StatusCode).
			Msg("Zendesk rejected ticket update")
		writeJSON(w, apiError.StatusCode, upstreamErrorResponse{Error: CodeZendeskError, Detail: apiError.Body})
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("ticket_id", submission.TicketID).Msg("Zendesk call failed")
		WriteError(w, http.StatusInternalServerError, CodeInternalError)
		return
	}

	logger.Info().
		Str("ticket_id", submission.TicketID).
		Float64("score", submission.Score).
		Msg("NPS recorded")
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}
