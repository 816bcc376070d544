package analysis

import (
	"encoding/json"
	"strings"

	"rfpdesk/pkg/types"
)

// stripFences removes a leading/trailing markdown code fence that chat
// models wrap around JSON replies despite the json_object response format.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// parseFields decodes the model reply leniently: fences are stripped, the
// payload is checked against the analysis schema, and anything unsalvageable
// comes back as an empty record with ok=false rather than an error.
func parseFields(content string) (types.AnalysisFields, bool) {
	cleaned := stripFences(content)

	if err := ValidateJSONAgainstSchema(BuildAnalysisJSONSchema(), []byte(cleaned)); err != nil {
		return types.AnalysisFields{}, false
	}

	var fields types.AnalysisFields
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return types.AnalysisFields{}, false
	}

	return fields, true
}
