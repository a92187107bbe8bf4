package masterdata

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-hr/internal/platform/httpx"
)

// cleanRows trims string values, drops the client row key and removes rows
// missing any required field. It returns the kept rows and how many were dropped.
func cleanRows(v *validator.Validate, res Resource, rows []Row, requireID bool) ([]Row, int) {
	rules := make(map[string]any, len(res.Required)+1)
	for _, field := range res.Required {
		rules[field] = "required"
	}
	if requireID {
		rules["id"] = "required"
	}

	kept := make([]Row, 0, len(rows))
	for _, row := range rows {
		cleaned := cleanRow(row)
		if requireID && cleaned.ID() == "" {
			continue
		}
		if len(v.ValidateMap(map[string]any(cleaned), rules)) > 0 {
			continue
		}
		kept = append(kept, cleaned)
	}
	return kept, len(rows) - len(kept)
}

func cleanRow(row Row) Row {
	out := make(Row, len(row))
	for k, val := range row {
		if k == RowKeyField {
			continue
		}
		if s, ok := val.(string); ok {
			val = strings.TrimSpace(s)
		}
		out[k] = val
	}
	return out
}

func validateOne(v *validator.Validate, res Resource, row Row) (Row, error) {
	kept, _ := cleanRows(v, res, []Row{row}, false)
	if len(kept) == 0 {
		return nil, httpx.Invalid(requiredMessage(res))
	}
	return kept[0], nil
}

func requiredMessage(res Resource) string {
	return "Please fill in " + strings.Join(res.Required, ", ") + " for at least one " + strings.ToLower(res.Label)
}
