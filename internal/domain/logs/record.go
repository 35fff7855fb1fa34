// Package logs holds the log record type retrieved from the log store.
package logs

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Record is a single structured log document, kept as the raw JSON returned
// by the log store. Records are immutable: every transformation returns a
// new value and leaves the original bytes untouched.
type Record string

// Field returns the string value of a top-level field, if present.
func (r Record) Field(key string) (string, bool) {
	v := gjson.Get(string(r), key)
	if !v.Exists() {
		return "", false
	}
	return v.String(), true
}

// Has reports whether the record carries a top-level field.
func (r Record) Has(key string) bool {
	return gjson.Get(string(r), key).Exists()
}

// WithFields returns a copy of the record with the given field values
// replaced. Fields the record does not carry are skipped: partial
// replacement is valid, keys are never added. All other bytes of the
// document are preserved verbatim.
func (r Record) WithFields(replacements map[string]string) (Record, error) {
	doc := string(r)
	for key, value := range replacements {
		if !gjson.Get(doc, key).Exists() {
			continue
		}
		updated, err := sjson.Set(doc, key, value)
		if err != nil {
			return r, err
		}
		doc = updated
	}
	return Record(doc), nil
}
