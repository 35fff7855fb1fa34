package extraction

import (
	"context"

	"github.com/notifid/logextractor/internal/domain/logs"
)

// Pseudonymous record fields the deanonymization pass resolves.
const (
	recordFieldUID  = "uid"
	recordFieldCxID = "cx_id"
)

// Redactor rewrites pseudonymous fields of log records using resolved
// identities. Records are immutable; every pass returns new values in the
// input order.
type Redactor struct {
	identity IdentityResolver
}

// NewRedactor creates a redactor backed by the identity service.
func NewRedactor(identity IdentityResolver) *Redactor {
	return &Redactor{identity: identity}
}

// ApplyReplacements substitutes the given field values on a record. Fields
// the record does not carry are skipped; an empty map is a no-op.
func (r *Redactor) ApplyReplacements(record logs.Record, fields map[string]string) (logs.Record, error) {
	if len(fields) == 0 {
		return record, nil
	}
	return record.WithFields(fields)
}

// Deanonymize resolves the uid and cx_id fields of every record that
// carries them. Records lacking a field pass through unchanged for that
// field. Resolution failures propagate; identities are never defaulted.
func (r *Redactor) Deanonymize(ctx context.Context, records []logs.Record) ([]logs.Record, error) {
	out := make([]logs.Record, 0, len(records))
	for _, record := range records {
		replacements := make(map[string]string, 2)

		if uid, ok := record.Field(recordFieldUID); ok && uid != "" {
			taxID, err := r.identity.TaxID(ctx, uid)
			if err != nil {
				return nil, err
			}
			replacements[recordFieldUID] = taxID
		}
		if cxID, ok := record.Field(recordFieldCxID); ok && cxID != "" {
			name, err := r.identity.OrganizationName(ctx, cxID)
			if err != nil {
				return nil, err
			}
			replacements[recordFieldCxID] = name
		}

		redacted, err := r.ApplyReplacements(record, replacements)
		if err != nil {
			return nil, err
		}
		out = append(out, redacted)
	}
	return out, nil
}
