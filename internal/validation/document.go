package validation

import (
	"encoding/json"

	apierrors "taxwizz/internal/errors"
	"taxwizz/pkg/contracts/domain"
)

// DocumentReport is the result of checking a candidate tax document.
type DocumentReport struct {
	Valid   bool                        `json:"valid"`
	Message string                      `json:"message"`
	Errors  []apierrors.ValidationError `json:"errors,omitempty"`
}

// CheckStandardDocument validates that raw JSON has the shape of a
// standard tax document: capitalGain and profitLossACIncomes arrays, and
// a matching metadata version when a metadata block is present. Malformed
// input produces an invalid report, never an error.
func CheckStandardDocument(raw []byte) DocumentReport {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return DocumentReport{
			Valid:   false,
			Message: "Body is not a JSON object",
			Errors: []apierrors.ValidationError{
				{Field: "", Message: err.Error()},
			},
		}
	}

	var errs []apierrors.ValidationError
	for _, field := range []string{"capitalGain", "profitLossACIncomes"} {
		value, ok := body[field]
		if !ok {
			errs = append(errs, apierrors.ValidationError{Field: field, Message: "required array is missing"})
			continue
		}
		// Unmarshal alone accepts null for a slice, so reject it explicitly
		var asArray []json.RawMessage
		if err := json.Unmarshal(value, &asArray); err != nil || string(value) == "null" {
			errs = append(errs, apierrors.ValidationError{Field: field, Message: "must be an array"})
		}
	}

	if rawMeta, ok := body["metadata"]; ok {
		var meta domain.DocumentMetadata
		if err := json.Unmarshal(rawMeta, &meta); err != nil {
			errs = append(errs, apierrors.ValidationError{Field: "metadata", Message: "must be an object"})
		} else if meta.Version != domain.DocumentVersion {
			errs = append(errs, apierrors.ValidationError{Field: "metadata.version", Message: "unsupported document version"})
		}
	}

	if len(errs) > 0 {
		return DocumentReport{Valid: false, Message: "Document failed validation", Errors: errs}
	}
	return DocumentReport{Valid: true, Message: "Document is valid"}
}
