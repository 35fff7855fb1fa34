package logstore

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifid/logextractor/internal/domain/errors"
)

func decodeLines(t *testing.T, body string) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		var doc map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &doc))
		out = append(out, doc)
	}
	return out
}

func TestBuildMultiSearch_SingleSpec(t *testing.T) {
	body, err := BuildMultiSearch([]QuerySpec{{
		Index:     "pn-logs",
		Equality:  map[string]string{"uid.keyword": "P1"},
		Range:     &RangeFilter{Field: "@timestamp", From: "2024-01-01", To: "2024-01-31"},
		SortField: "@timestamp",
		SortOrder: SortAsc,
	}})
	require.NoError(t, err)

	lines := decodeLines(t, body)
	require.Len(t, lines, 2)
	assert.Equal(t, "pn-logs", lines[0]["index"])

	filters := lines[1]["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"].([]interface{})
	require.Len(t, filters, 2)

	term := filters[0].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, "P1", term["uid.keyword"].(map[string]interface{})["value"])

	rng := filters[1].(map[string]interface{})["range"].(map[string]interface{})["@timestamp"].(map[string]interface{})
	assert.Equal(t, "2024-01-01", rng["gte"])
	assert.Equal(t, "2024-01-31", rng["lte"])

	sorts := lines[1]["sort"].([]interface{})
	require.Len(t, sorts, 1)
	assert.Equal(t, "asc", sorts[0].(map[string]interface{})["@timestamp"].(map[string]interface{})["order"])
}

func TestBuildMultiSearch_BatchPreservesOrder(t *testing.T) {
	body, err := BuildMultiSearch([]QuerySpec{
		{Index: "pn-logs", Equality: map[string]string{"iun.keyword": "IUN-1"}},
		{Index: "pn-logs", Equality: map[string]string{"iun.keyword": "IUN-2"}},
	})
	require.NoError(t, err)

	lines := decodeLines(t, body)
	require.Len(t, lines, 4)
	assert.Contains(t, body, "IUN-1")
	first := strings.Index(body, "IUN-1")
	second := strings.Index(body, "IUN-2")
	assert.Less(t, first, second)
}

func TestBuildMultiSearch_InvertedRangeRejected(t *testing.T) {
	_, err := BuildMultiSearch([]QuerySpec{{
		Index:    "pn-logs",
		Equality: map[string]string{"uid.keyword": "P1"},
		Range:    &RangeFilter{Field: "@timestamp", From: "2024-02-01", To: "2024-01-01"},
	}})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestBuildMultiSearch_UnconstrainedRejected(t *testing.T) {
	_, err := BuildMultiSearch([]QuerySpec{{Index: "pn-logs"}})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = BuildMultiSearch(nil)
	require.Error(t, err)
}

func TestBuildMultiSearch_ValueTreatedAsLiteral(t *testing.T) {
	// a crafted value full of query syntax must stay a single string literal
	crafted := `"}},{"match_all":{}}],"should":[{"term":{"uid":{"value":"x`
	body, err := BuildMultiSearch([]QuerySpec{{
		Index:    "pn-logs",
		Equality: map[string]string{"uid.keyword": crafted},
	}})
	require.NoError(t, err)

	lines := decodeLines(t, body)
	filters := lines[1]["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"].([]interface{})
	require.Len(t, filters, 1, "crafted value must not add filter clauses")

	term := filters[0].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, crafted, term["uid.keyword"].(map[string]interface{})["value"],
		"value must round-trip unchanged")

	bool_ := lines[1]["query"].(map[string]interface{})["bool"].(map[string]interface{})
	_, hasShould := bool_["should"]
	assert.False(t, hasShould, "crafted value must not alter the boolean structure")
}

func TestBuildMultiSearch_DeterministicFilterOrder(t *testing.T) {
	spec := QuerySpec{
		Index:    "pn-logs",
		Equality: map[string]string{"b": "2", "a": "1", "c": "3"},
	}
	first, err := BuildMultiSearch([]QuerySpec{spec})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := BuildMultiSearch([]QuerySpec{spec})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
