package masterdata

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RowKeyField is the client-only key of a dynamically added form row.
const RowKeyField = "rowKey"

// Row is one record as exchanged with the backend. Master-data tables differ
// only in their columns, so rows stay untyped.
type Row map[string]any

// ID returns the row id as a string.
func (r Row) ID() string {
	return idString(r["id"])
}

// BulkResult aggregates the outcome of a bulk call.
type BulkResult struct {
	Requested int      `json:"requested"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Dropped   int      `json:"dropped,omitempty"`
	FailedIDs []string `json:"failedIds,omitempty"`
}

// Outcome is what a bulk operation reports to the operator.
type Outcome struct {
	Message string     `json:"-"`
	Result  BulkResult `json:"result"`
}

func summary(verb string, res Resource, result BulkResult) string {
	if result.Failed == 0 {
		return fmt.Sprintf("%s %d %s", verb, result.Succeeded, res.Plural)
	}
	return fmt.Sprintf("%s %d of %d %s", verb, result.Succeeded, result.Requested, res.Plural)
}

func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(id)
	case json.Number:
		return id.String()
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return strings.TrimSpace(fmt.Sprint(id))
	}
}
