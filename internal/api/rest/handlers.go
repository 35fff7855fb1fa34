package rest

import (
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/notifid/logextractor/internal/domain/errors"
	"github.com/notifid/logextractor/internal/domain/extraction"
	extractionsvc "github.com/notifid/logextractor/internal/service/extraction"
)

// Handler binds the extraction service to the HTTP surface.
type Handler struct {
	svc      extractionsvc.Service
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates the REST handler set.
func NewHandler(svc extractionsvc.Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
		logger:   logger.With(slog.String("component", "rest")),
	}
}

func (h *Handler) personLogs(w http.ResponseWriter, r *http.Request) {
	var req personLogsRequest
	if !h.bind(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logTicket(r, "person logs requested", req.TicketNumber)

	outcome, err := h.svc.PersonActivityLogs(r.Context(), req.toDomain())
	h.writeOutcome(w, r, "person_logs", outcome, err)
}

func (h *Handler) notificationBundle(w http.ResponseWriter, r *http.Request) {
	var req notificationBundleRequest
	if !h.bind(w, r, &req) {
		return
	}
	h.logTicket(r, "notification bundle requested", req.TicketNumber)

	outcome, err := h.svc.NotificationBundle(r.Context(), req.toDomain())
	h.writeOutcome(w, r, "notification_bundle", outcome, err)
}

func (h *Handler) monthlyExport(w http.ResponseWriter, r *http.Request) {
	var req monthlyExportRequest
	if !h.bind(w, r, &req) {
		return
	}
	h.logTicket(r, "monthly export requested", req.TicketNumber)

	outcome, err := h.svc.MonthlyExport(r.Context(), req.toDomain())
	h.writeOutcome(w, r, "monthly_export", outcome, err)
}

func (h *Handler) traceLogs(w http.ResponseWriter, r *http.Request) {
	var req traceLogsRequest
	if !h.bind(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logTicket(r, "trace logs requested", req.TicketNumber)

	outcome, err := h.svc.TraceLogs(r.Context(), req.toDomain())
	h.writeOutcome(w, r, "trace_logs", outcome, err)
}

func (h *Handler) sessionLogs(w http.ResponseWriter, r *http.Request) {
	var req sessionLogsRequest
	if !h.bind(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logTicket(r, "session logs requested", req.TicketNumber)

	outcome, err := h.svc.TraceLogs(r.Context(), req.toDomain())
	h.writeOutcome(w, r, "session_logs", outcome, err)
}

func (h *Handler) personID(w http.ResponseWriter, r *http.Request) {
	var req personIDRequest
	if !h.bind(w, r, &req) {
		return
	}
	h.logTicket(r, "person id lookup requested", req.TicketNumber)

	personID, err := h.svc.PersonID(r.Context(), extraction.RecipientType(req.RecipientType), req.TaxID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, personIDResponse{PersonID: personID})
}

func (h *Handler) taxID(w http.ResponseWriter, r *http.Request) {
	var req taxIDRequest
	if !h.bind(w, r, &req) {
		return
	}
	h.logTicket(r, "tax id lookup requested", req.TicketNumber)

	taxID, err := h.svc.TaxID(r.Context(), req.PersonID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, taxIDResponse{TaxID: taxID})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// bind decodes and tag-validates the request body, writing the error
// response itself when either step fails.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.writeError(w, r, errors.NewValidationError("MALFORMED_BODY", "request body is not valid JSON"))
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, r, errors.NewValidationError("INVALID_REQUEST", err.Error()))
		return false
	}
	return true
}

func (h *Handler) writeOutcome(w http.ResponseWriter, r *http.Request, useCase string, outcome *extraction.Outcome, err error) {
	if err != nil {
		extractionResults.WithLabelValues(useCase, "error").Inc()
		h.writeError(w, r, err)
		return
	}

	resp := extractionResponse{Message: outcome.Message}
	switch outcome.Kind {
	case extraction.OutcomeArchive:
		extractionResults.WithLabelValues(useCase, "archive").Inc()
		resp.Password = outcome.Password
		resp.Zip = base64.StdEncoding.EncodeToString(outcome.Archive)
	case extraction.OutcomeNoContent:
		extractionResults.WithLabelValues(useCase, "no_content").Inc()
	case extraction.OutcomeNotReady:
		extractionResults.WithLabelValues(useCase, "not_ready").Inc()
		resp.RetryAfterMinutes = int(outcome.RetryAfter.Minutes())
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.GetStatusCode(err)
	body := errorResponse{Error: errorBody{Code: "INTERNAL_ERROR", Message: "an internal error occurred"}}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		body.Error.Code = appErr.Code
		body.Error.Message = appErr.Message
	}

	if status >= 500 {
		h.logger.ErrorContext(r.Context(), "request failed", slog.String("error", err.Error()))
	} else {
		h.logger.WarnContext(r.Context(), "request rejected", slog.String("error", err.Error()))
	}
	h.writeJSON(w, status, body)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("writing response failed", slog.String("error", err.Error()))
	}
}

// operatorHeader carries the identifier of the support operator issuing
// the request.
const operatorHeader = "x-pagopa-uid"

func (h *Handler) logTicket(r *http.Request, message, ticket string) {
	h.logger.InfoContext(r.Context(), message,
		slog.String("ticket", ticket),
		slog.String("operator", r.Header.Get(operatorHeader)),
	)
}
