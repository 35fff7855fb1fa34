// Package logstore builds multi-search queries for an OpenSearch-compatible
// log store and executes them over HTTP with basic authentication.
package logstore

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/notifid/logextractor/internal/domain/errors"
)

// SortOrder is the direction of the single sort key of a query.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// RangeFilter is an inclusive time-range constraint on a timestamp field.
type RangeFilter struct {
	Field string
	From  string
	To    string
}

// QuerySpec describes one sub-query of a multi-search request: equality
// filters combined with AND, an optional inclusive time range and a single
// sort key.
type QuerySpec struct {
	Index     string
	Equality  map[string]string
	Range     *RangeFilter
	SortField string
	SortOrder SortOrder
	Size      int
}

// defaultSize caps the hits returned per sub-query when the spec does not
// set one.
const defaultSize = 10000

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

// BuildMultiSearch renders the specs as an NDJSON multi-search body, one
// header/body line pair per spec, preserving spec order. Filter values are
// marshalled with encoding/json so they are always string literals inside
// the query document; crafted values cannot alter the filter structure.
func BuildMultiSearch(specs []QuerySpec) (string, error) {
	if len(specs) == 0 {
		return "", errors.NewInvalidQueryError("at least one query spec is required")
	}

	var b strings.Builder
	for _, spec := range specs {
		if err := validateSpec(spec); err != nil {
			return "", err
		}

		header, err := json.Marshal(map[string]string{"index": spec.Index})
		if err != nil {
			return "", errors.Wrap(err, "marshaling msearch header")
		}

		body, err := json.Marshal(buildBody(spec))
		if err != nil {
			return "", errors.Wrap(err, "marshaling msearch body")
		}

		b.Write(header)
		b.WriteByte('\n')
		b.Write(body)
		b.WriteByte('\n')
	}

	return b.String(), nil
}

func validateSpec(spec QuerySpec) error {
	if spec.Index == "" {
		return errors.NewInvalidQueryError("target index is required")
	}
	if len(spec.Equality) == 0 && spec.Range == nil {
		return errors.NewInvalidQueryError("unconstrained query rejected: at least one filter or a time range is required")
	}
	if spec.Range != nil {
		from, err := parseTimestamp(spec.Range.From)
		if err != nil {
			return errors.NewInvalidQueryError(fmt.Sprintf("invalid range start %q", spec.Range.From))
		}
		to, err := parseTimestamp(spec.Range.To)
		if err != nil {
			return errors.NewInvalidQueryError(fmt.Sprintf("invalid range end %q", spec.Range.To))
		}
		if from.After(to) {
			return errors.NewInvalidQueryError(fmt.Sprintf("range start %s is after range end %s", spec.Range.From, spec.Range.To))
		}
	}
	return nil
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

func buildBody(spec QuerySpec) map[string]interface{} {
	// deterministic filter order: sorted field names, range last
	fields := make([]string, 0, len(spec.Equality))
	for field := range spec.Equality {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	filters := make([]map[string]interface{}, 0, len(fields)+1)
	for _, field := range fields {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{
				field: map[string]string{"value": spec.Equality[field]},
			},
		})
	}
	if spec.Range != nil {
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{
				spec.Range.Field: map[string]string{
					"gte": spec.Range.From,
					"lte": spec.Range.To,
				},
			},
		})
	}

	size := spec.Size
	if size <= 0 {
		size = defaultSize
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filters},
		},
		"size": size,
	}

	if spec.SortField != "" {
		order := spec.SortOrder
		if order == "" {
			order = SortAsc
		}
		body["sort"] = []map[string]interface{}{
			{spec.SortField: map[string]SortOrder{"order": order}},
		}
	}

	return body
}
