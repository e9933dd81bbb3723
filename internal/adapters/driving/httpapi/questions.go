package httpapi

import (
	"encoding/json"

	"github.com/xeipuuv/gojsonschema"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// questionsSchema accepts either a flat JSON array of strings or an object
// with a "questions" array of strings.
const questionsSchema = `{
	"oneOf": [
		{
			"type": "array",
			"items": {"type": "string"}
		},
		{
			"type": "object",
			"required": ["questions"],
			"properties": {
				"questions": {
					"type": "array",
					"items": {"type": "string"}
				}
			}
		}
	]
}`

var questionsSchemaLoader = gojsonschema.NewStringLoader(questionsSchema)

// ParseQuestions decodes the questions file into a raw question list.
// Invalid JSON maps to domain.ErrQuestionsJSON; valid JSON of the wrong
// shape maps to domain.ErrQuestionsShape. Trimming, blank filtering and the
// batch limit are the domain's job, not this parser's.
func ParseQuestions(data []byte) ([]string, error) {
	if !json.Valid(data) {
		return nil, domain.ErrQuestionsJSON
	}

	result, err := gojsonschema.Validate(questionsSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, domain.ErrQuestionsJSON
	}
	if !result.Valid() {
		return nil, domain.ErrQuestionsShape
	}

	var flat []string
	if err := json.Unmarshal(data, &flat); err == nil {
		return flat, nil
	}

	var wrapped struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, domain.ErrQuestionsShape
	}
	return wrapped.Questions, nil
}
