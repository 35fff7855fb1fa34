package rest

import (
	"time"

	"github.com/notifid/logextractor/internal/domain/errors"
	"github.com/notifid/logextractor/internal/domain/extraction"
)

// maxPersonWindowMonths caps operator-supplied date windows.
const maxPersonWindowMonths = 3

const dateLayout = "2006-01-02"

// personLogsRequest covers both the anonymized and deanonymized person
// activity use cases. With a date window the anonymized variant queries by
// personId and the deanonymized one by recipientType + taxId; with an iun
// no person identifier is needed. Either an explicit date window or an iun
// is given, never both.
type personLogsRequest struct {
	TicketNumber    string `json:"ticketNumber" validate:"required"`
	Deanonimization bool   `json:"deanonimization"`
	RecipientType   string `json:"recipientType" validate:"omitempty,oneof=PF PG"`
	TaxID           string `json:"taxId"`
	PersonID        string `json:"personId"`
	IUN             string `json:"iun"`
	DateFrom        string `json:"dateFrom" validate:"omitempty,datetime=2006-01-02"`
	DateTo          string `json:"dateTo" validate:"omitempty,datetime=2006-01-02"`
}

func (r personLogsRequest) validate() error {
	hasWindow := r.DateFrom != "" && r.DateTo != ""
	if hasWindow == (r.IUN != "") {
		return errors.NewValidationError("AMBIGUOUS_SCOPE",
			"exactly one of a date window or an iun must be provided")
	}

	// An iun alone identifies the extraction: the query runs on the
	// notification and deanonymization, if requested, happens on the
	// result records. Person identifiers are only needed with a window.
	if r.IUN == "" {
		if r.Deanonimization {
			if r.TaxID == "" || r.RecipientType == "" {
				return errors.NewValidationError("MISSING_IDENTITY",
					"deanonymized extraction by date window requires recipientType and taxId")
			}
		} else if r.PersonID == "" {
			return errors.NewValidationError("MISSING_PERSON_ID",
				"anonymized extraction by date window requires personId")
		}
	}

	if hasWindow {
		return validateWindow(r.DateFrom, r.DateTo)
	}
	return nil
}

func (r personLogsRequest) toDomain() extraction.PersonLogsRequest {
	return extraction.PersonLogsRequest{
		TicketNumber:  r.TicketNumber,
		Deanonymize:   r.Deanonimization,
		RecipientType: extraction.RecipientType(r.RecipientType),
		TaxID:         r.TaxID,
		PersonID:      r.PersonID,
		IUN:           r.IUN,
		DateFrom:      r.DateFrom,
		DateTo:        r.DateTo,
	}
}

type notificationBundleRequest struct {
	TicketNumber string `json:"ticketNumber" validate:"required"`
	IUN          string `json:"iun" validate:"required"`
}

func (r notificationBundleRequest) toDomain() extraction.NotificationBundleRequest {
	return extraction.NotificationBundleRequest{
		TicketNumber: r.TicketNumber,
		IUN:          r.IUN,
	}
}

type monthlyExportRequest struct {
	TicketNumber string `json:"ticketNumber" validate:"required"`
	IPACode      string `json:"ipaCode" validate:"required"`
	StartMonth   string `json:"startMonth" validate:"required,datetime=2006-01"`
	EndMonth     string `json:"endMonth" validate:"required,datetime=2006-01"`
}

func (r monthlyExportRequest) toDomain() extraction.MonthlyExportRequest {
	return extraction.MonthlyExportRequest{
		TicketNumber: r.TicketNumber,
		StartMonth:   r.StartMonth,
		EndMonth:     r.EndMonth,
		IPACode:      r.IPACode,
	}
}

type traceLogsRequest struct {
	TicketNumber    string `json:"ticketNumber" validate:"required"`
	TraceID         string `json:"traceId" validate:"required"`
	Deanonimization bool   `json:"deanonimization"`
	DateFrom        string `json:"dateFrom" validate:"required,datetime=2006-01-02"`
	DateTo          string `json:"dateTo" validate:"required,datetime=2006-01-02"`
}

func (r traceLogsRequest) validate() error {
	return validateWindow(r.DateFrom, r.DateTo)
}

func (r traceLogsRequest) toDomain() extraction.TraceLogsRequest {
	return extraction.TraceLogsRequest{
		TicketNumber: r.TicketNumber,
		TraceID:      r.TraceID,
		DateFrom:     r.DateFrom,
		DateTo:       r.DateTo,
		Deanonymize:  r.Deanonimization,
	}
}

type sessionLogsRequest struct {
	TicketNumber    string `json:"ticketNumber" validate:"required"`
	JTI             string `json:"jti" validate:"required"`
	Deanonimization bool   `json:"deanonimization"`
	DateFrom        string `json:"dateFrom" validate:"required,datetime=2006-01-02"`
	DateTo          string `json:"dateTo" validate:"required,datetime=2006-01-02"`
}

func (r sessionLogsRequest) validate() error {
	return validateWindow(r.DateFrom, r.DateTo)
}

func (r sessionLogsRequest) toDomain() extraction.TraceLogsRequest {
	return extraction.TraceLogsRequest{
		TicketNumber: r.TicketNumber,
		SessionID:    r.JTI,
		DateFrom:     r.DateFrom,
		DateTo:       r.DateTo,
		Deanonymize:  r.Deanonimization,
	}
}

type personIDRequest struct {
	TicketNumber  string `json:"ticketNumber" validate:"required"`
	RecipientType string `json:"recipientType" validate:"required,oneof=PF PG"`
	TaxID         string `json:"taxId" validate:"required"`
}

type taxIDRequest struct {
	TicketNumber string `json:"ticketNumber" validate:"required"`
	PersonID     string `json:"personId" validate:"required"`
}

// validateWindow rejects inverted windows and windows longer than the
// allowed span.
func validateWindow(from, to string) error {
	start, err := time.Parse(dateLayout, from)
	if err != nil {
		return errors.NewValidationError("INVALID_DATE", "dateFrom is not a valid date")
	}
	end, err := time.Parse(dateLayout, to)
	if err != nil {
		return errors.NewValidationError("INVALID_DATE", "dateTo is not a valid date")
	}
	if end.Before(start) {
		return errors.NewValidationError("INVERTED_WINDOW", "dateTo precedes dateFrom")
	}
	if end.After(start.AddDate(0, maxPersonWindowMonths, 0)) {
		return errors.NewValidationError("WINDOW_TOO_WIDE", "date window exceeds 3 months")
	}
	return nil
}
