package server

import (
	"blower-selector/internal/conversation"
	"blower-selector/internal/quote"
)

// ConversationRequest is one turn of the questionnaire. Callers either echo
// the state from the previous response or pass a session id and let the
// server keep state in Redis.
type ConversationRequest struct {
	SessionID string              `json:"session_id,omitempty"`
	State     *conversation.State `json:"state,omitempty"`
	Answer    string              `json:"answer"`
}

// ErrorBody is the user-facing error payload.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ConversationResponse carries the advanced state and, once the
// questionnaire completes, the assembled quote.
type ConversationResponse struct {
	SessionID string             `json:"session_id"`
	State     conversation.State `json:"state"`
	Prompt    string             `json:"prompt,omitempty"`
	Completed bool               `json:"completed"`
	Error     *ErrorBody         `json:"error,omitempty"`
	Quote     *quote.Quote       `json:"quote,omitempty"`
}
