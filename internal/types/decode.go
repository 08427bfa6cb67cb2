package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"essaylens/internal/errors"
)

var requiredResultKeys = []string{
	"overall_score",
	"overall_grade",
	"length_check",
	"keyword_analysis",
	"model_answer",
	"model_answer_length",
}

var requiredLegacyKeys = []string{
	"overall_score",
	"length_check",
	"keyword_analysis",
}

// DecodeResult parses a v2 analysis result. Every required key must be
// present; optional sections may be absent.
func DecodeResult(data []byte) (*AnalysisResult, error) {
	if err := checkKeys(data, requiredResultKeys); err != nil {
		return nil, err
	}
	var result AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeMalformedResult,
			"analysis result does not match the expected shape", err)
	}
	return &result, nil
}

// DecodeLegacyResult parses a v1 analysis result.
func DecodeLegacyResult(data []byte) (*LegacyAnalysisResult, error) {
	if err := checkKeys(data, requiredLegacyKeys); err != nil {
		return nil, err
	}
	var result LegacyAnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeMalformedResult,
			"legacy analysis result does not match the expected shape", err)
	}
	return &result, nil
}

func checkKeys(data []byte, keys []string) error {
	if !gjson.ValidBytes(data) {
		return errors.NewValidationError(errors.ErrCodeMalformedResult,
			"analysis result is not valid JSON", nil)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return errors.NewValidationError(errors.ErrCodeMalformedResult,
			"analysis result must be a JSON object", nil)
	}

	var missing []string
	for _, key := range keys {
		if v := root.Get(key); !v.Exists() || v.Type == gjson.Null {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return errors.NewValidationError(errors.ErrCodeMalformedResult,
			fmt.Sprintf("analysis result is missing required fields: %s", strings.Join(missing, ", ")), nil).
			WithContext("missing", missing)
	}
	return nil
}
