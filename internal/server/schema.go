package server

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// requestSchema is the shape of the conversation request body. Structural
// checks on the decoded state itself happen in the state machine; this
// rejects malformed bodies before they reach it.
const requestSchema = `{
	"type": "object",
	"properties": {
		"session_id": {"type": "string", "maxLength": 64},
		"answer": {"type": "string", "maxLength": 512},
		"state": {
			"type": "object",
			"properties": {
				"current_step": {"type": "integer", "minimum": 0},
				"completed": {"type": "boolean"},
				"answers": {"type": "object"}
			},
			"required": ["current_step", "completed"]
		}
	},
	"required": ["answer"]
}`

var requestSchemaLoader = gojsonschema.NewStringLoader(requestSchema)

// validateRequestBody checks the raw JSON body against the request schema.
func validateRequestBody(body []byte) error {
	result, err := gojsonschema.Validate(requestSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("request validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("invalid request body: %v", errs)
	}

	return nil
}
