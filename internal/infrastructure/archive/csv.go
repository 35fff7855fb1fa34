package archive

import (
	"bytes"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/notifid/logextractor/internal/domain/errors"
)

// NotificationRow is one line of a monthly notification export.
type NotificationRow struct {
	IUN                  string `csv:"iun"`
	SentAt               string `csv:"data_invio"`
	LegalFactGeneratedAt string `csv:"data_generazione_attestazione_opponibile_a_terzi"`
	Subject              string `csv:"oggetto"`
	Recipients           string `csv:"codici_fiscali"`
}

// SanitizeCell neutralizes spreadsheet formula injection by prefixing a
// quote when the value starts with a formula trigger character.
func SanitizeCell(value string) string {
	if value == "" {
		return value
	}
	switch value[0] {
	case '=', '+', '-', '@':
		return "'" + value
	}
	return value
}

// Sanitized returns a copy of the row with every cell passed through
// SanitizeCell.
func (r NotificationRow) Sanitized() NotificationRow {
	return NotificationRow{
		IUN:                  SanitizeCell(r.IUN),
		SentAt:               SanitizeCell(r.SentAt),
		LegalFactGeneratedAt: SanitizeCell(r.LegalFactGeneratedAt),
		Subject:              SanitizeCell(r.Subject),
		Recipients:           SanitizeCell(r.Recipients),
	}
}

// JoinRecipients renders a recipient list as a single CSV cell.
func JoinRecipients(taxIDs []string) string {
	return strings.Join(taxIDs, "-")
}

// MarshalPages splits rows into pages of at most pageSize rows and renders
// each page as a standalone CSV document with a header line.
func MarshalPages(rows []NotificationRow, pageSize int) ([][]byte, error) {
	if pageSize <= 0 {
		pageSize = len(rows)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var pages [][]byte
	for start := 0; start < len(rows); start += pageSize {
		end := start + pageSize
		if end > len(rows) {
			end = len(rows)
		}

		page := make([]NotificationRow, 0, end-start)
		for _, row := range rows[start:end] {
			page = append(page, row.Sanitized())
		}

		var buf bytes.Buffer
		if err := gocsv.Marshal(page, &buf); err != nil {
			return nil, errors.NewArchiveWriteError("rendering csv page").WithCause(err)
		}
		pages = append(pages, buf.Bytes())
	}
	return pages, nil
}
