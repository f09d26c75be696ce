package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"blower-selector/internal/common/errors"
	"blower-selector/internal/conversation"
	"blower-selector/internal/quote"
)

const maxBodyBytes = 64 * 1024

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	snap := s.deps.Catalog.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":  snap.Version,
		"products": snap.Products,
	})
}

// handleCatalogRefresh re-reads the catalog file on demand. A failed refresh
// keeps the previous snapshot live.
func (s *Server) handleCatalogRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Catalog.Refresh(); err != nil {
		s.log.WithError(err).Error("on-demand catalog refresh failed")
		writeError(w, http.StatusInternalServerError, string(errors.CodeOf(err)), "catalog refresh failed; previous catalog still active")
		return
	}

	snap := s.deps.Catalog.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":  snap.Version,
		"products": len(snap.Products),
	})
}

func (s *Server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	if s.deps.Quotes == nil {
		writeError(w, http.StatusServiceUnavailable, "QUOTES_DISABLED", "quote persistence is not configured")
		return
	}

	quoteID := chi.URLParam(r, "quoteID")
	q, err := s.deps.Quotes.Get(r.Context(), quoteID)
	if err != nil {
		if errors.IsDomain(err) {
			writeError(w, http.StatusNotFound, string(errors.CodeOf(err)), "quote not found")
			return
		}
		s.log.WithError(err).Error("quote lookup failed", zap.String("quote_id", quoteID))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "could not load quote")
		return
	}

	writeJSON(w, http.StatusOK, q)
}

// handleConversation advances the questionnaire by one answer and, on
// completion, runs sizing, matching, and quote assembly in one pass.
func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_BODY", "could not read request body")
		return
	}

	if err := validateRequestBody(body); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_BODY", err.Error())
		return
	}

	var req ConversationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_BODY", "malformed JSON body")
		return
	}

	state, sessionID, err := s.resolveState(r, &req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STATE_LOAD_FAILED", "could not load session state")
		return
	}

	wasCompleted := state.Completed
	next, err := s.deps.Machine.Advance(state, req.Answer)
	if err != nil {
		if errors.IsStructural(err) {
			writeError(w, http.StatusBadRequest, string(errors.CodeOf(err)), err.Error())
			return
		}
		// Bad user input is part of the conversation, not a failure:
		// echo the unchanged state and the prompt for a retry.
		writeJSON(w, http.StatusOK, ConversationResponse{
			SessionID: sessionID,
			State:     state,
			Prompt:    state.Prompt(),
			Error: &ErrorBody{
				Code:    string(errors.CodeOf(err)),
				Message: err.Error(),
			},
		})
		return
	}

	resp := ConversationResponse{
		SessionID: sessionID,
		State:     next,
		Prompt:    next.Prompt(),
		Completed: next.Completed,
	}

	if next.Completed && !wasCompleted {
		q, status, errBody := s.finishConversation(r, next)
		if errBody != nil {
			writeError(w, status, errBody.Code, errBody.Message)
			return
		}
		resp.Quote = q
	}

	if s.deps.States != nil {
		if err := s.deps.States.Save(r.Context(), sessionID, next); err != nil {
			s.log.WithError(err).Warn("failed to persist session state",
				zap.String("session_id", sessionID))
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// resolveState picks the conversation state for this turn: an echoed state
// wins, then a stored session, then a fresh conversation.
func (s *Server) resolveState(r *http.Request, req *ConversationRequest) (conversation.State, string, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if req.State != nil {
		return *req.State, sessionID, nil
	}

	if req.SessionID != "" && s.deps.States != nil {
		state, found, err := s.deps.States.Load(r.Context(), req.SessionID)
		if err != nil {
			return conversation.State{}, sessionID, err
		}
		if found {
			return state, sessionID, nil
		}
	}

	return conversation.NewState(), sessionID, nil
}

// finishConversation runs the downstream pipeline for a just-completed
// answer set. Persistence and email failures are logged but do not withhold
// the quote from the caller.
func (s *Server) finishConversation(r *http.Request, state conversation.State) (*quote.Quote, int, *ErrorBody) {
	if err := conversation.RequireComplete(state); err != nil {
		return nil, http.StatusBadRequest, &ErrorBody{Code: string(errors.CodeOf(err)), Message: err.Error()}
	}

	requirement, err := s.deps.Sizer.Compute(state.Answers.SizingInput())
	if err != nil {
		return nil, http.StatusUnprocessableEntity, &ErrorBody{Code: string(errors.CodeOf(err)), Message: err.Error()}
	}

	matches := s.deps.Matcher.Match(requirement, s.deps.Catalog.Snapshot())
	q := s.deps.Assembler.Assemble(state.Answers, requirement, matches)

	if s.deps.Quotes != nil {
		if err := s.deps.Quotes.Save(r.Context(), q); err != nil {
			s.log.WithError(err).Error("quote not persisted", zap.String("quote_id", q.ID))
		}
	}
	if s.deps.Dispatcher != nil {
		if err := s.deps.Dispatcher.Dispatch(r.Context(), q); err != nil {
			s.log.WithError(err).Error("quote email not sent", zap.String("quote_id", q.ID))
		}
	}

	return q, 0, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": ErrorBody{Code: code, Message: message},
	})
}
