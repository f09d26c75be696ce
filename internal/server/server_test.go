package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alicebob/miniredis/v2"

	"blower-selector/internal/common/database"
	"blower-selector/internal/common/logger"
	"blower-selector/internal/conversation"
	"blower-selector/internal/matching"
	"blower-selector/internal/quote"
	"blower-selector/internal/refdata"
	"blower-selector/internal/sizing"
)

func testCatalog() *refdata.Store {
	return refdata.NewStaticStore(&refdata.Snapshot{
		Version: "test",
		Products: []refdata.Product{
			{
				Model: "GHBH-007-56-3R4", AirflowMin: 3.2, AirflowMax: 7.0,
				PressureMinMbr: 120, PressureMaxMbr: 280, PowerKW: 4.0,
				Price: 24300, StockState: refdata.StockInStock,
			},
			{
				Model: "2BH7-510-0AH26", AirflowMin: 2.2, AirflowMax: 8.6,
				PressureMinMbr: 110, PressureMaxMbr: 400, PowerKW: 4.6,
				Price: 33400, StockState: refdata.StockInStock,
			},
			{
				Model: "2BH7-610-0AH36", AirflowMin: 2.5, AirflowMax: 13.0,
				PressureMinMbr: 130, PressureMaxMbr: 800, PowerKW: 8.0,
				Price: 51200, StockState: refdata.StockOnOrder,
			},
		},
	})
}

func newTestServer(t *testing.T, states *StateStore) *Server {
	log := logger.NewTestLogger(t)
	return New(Deps{
		Machine:   conversation.NewMachine(log),
		Sizer:     sizing.NewEngine(sizing.DefaultConfig(), log),
		Matcher:   matching.NewEngine(log),
		Catalog:   testCatalog(),
		Assembler: quote.NewAssembler(log),
		States:    states,
		Logger:    log,
	})
}

func postConversation(t *testing.T, handler http.Handler, reqBody ConversationRequest) (*httptest.ResponseRecorder, ConversationResponse) {
	body, err := json.Marshal(reqBody)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversation", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp ConversationResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

// ==========================
// Conversation Flow Tests
// ==========================

func TestConversationEndToEndWithEchoedState(t *testing.T) {
	srv := newTestServer(t, nil)
	router := srv.Router()

	answers := []string{
		"compression",
		"sea level",
		"waste water",
		"normal",
		"1",
		"6 3 2",
		"default",
		"default",
		"ops@plant.co.za",
	}

	var state *conversation.State
	var last ConversationResponse
	for i, answer := range answers {
		rec, resp := postConversation(t, router, ConversationRequest{State: state, Answer: answer})
		require.Equal(t, http.StatusOK, rec.Code, "answer %d (%q): %s", i, answer, rec.Body.String())
		require.Nil(t, resp.Error, "answer %d (%q)", i, answer)

		st := resp.State
		state = &st
		last = resp
	}

	require.True(t, last.Completed)
	require.NotNil(t, last.Quote)
	assert.Regexp(t, `^Q\d{8}-[0-9A-F]{8}$`, last.Quote.ID)
	assert.NotEmpty(t, last.Quote.Matches)

	// Sea level wastewater 6x3x2 with the default fine bubble diffuser
	// and pipe run needs ~456 mbar, so only the 800 mbar unit qualifies.
	assert.Greater(t, last.Quote.Requirement.TotalPressureMbar, last.Quote.Requirement.Breakdown.StaticMbar)
	assert.Equal(t, "2BH7-610-0AH36", last.Quote.Matches[0].Product.Model)
}

func TestConversationValidationErrorKeepsState(t *testing.T) {
	srv := newTestServer(t, nil)
	router := srv.Router()

	// First answer OK.
	rec, resp := postConversation(t, router, ConversationRequest{Answer: "compression"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, resp.State.CurrentStep)

	// Second answer nonsense: HTTP 200, error body, unchanged state.
	st := resp.State
	rec, resp = postConversation(t, router, ConversationRequest{State: &st, Answer: "the moon"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, 1, resp.State.CurrentStep)
	assert.NotEmpty(t, resp.Prompt)
}

func TestConversationStructuralErrorIsBadRequest(t *testing.T) {
	srv := newTestServer(t, nil)
	router := srv.Router()

	bad := conversation.State{CurrentStep: 99, Completed: true}
	rec, _ := postConversation(t, router, ConversationRequest{State: &bad, Answer: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConversationRejectsMalformedBody(t *testing.T) {
	srv := newTestServer(t, nil)
	router := srv.Router()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversation",
		bytes.NewReader([]byte(`{"state": {"completed": "yes"}}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConversationWithSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	states := NewStateStore(&database.RedisClient{Client: client}, time.Hour, logger.NewTestLogger(t))

	srv := newTestServer(t, states)
	router := srv.Router()

	// No state echoed: the server assigns a session and stores state.
	rec, resp := postConversation(t, router, ConversationRequest{Answer: "vacuum"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, resp.SessionID)
	require.Equal(t, 1, resp.State.CurrentStep)

	// Follow-up by session id alone continues the same conversation.
	rec, resp = postConversation(t, router, ConversationRequest{SessionID: resp.SessionID, Answer: "durban"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, resp.State.CurrentStep)
	assert.Equal(t, 0.0, resp.State.Answers.Location.AltitudeM)
}

// ==========================
// Catalog & Health Tests
// ==========================

func TestCatalogEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Version  string            `json:"version"`
		Products []refdata.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "test", body.Version)
	assert.Len(t, body.Products, 3)
}

func TestCatalogRefreshEndpoint(t *testing.T) {
	log := logger.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "catalog.yaml")

	v1 := []byte(`
version: "1"
products:
  - model: A-100
    airflow_min: 1
    airflow_max: 4
    pressure_min: 100
    pressure_max: 300
    power_kw: 2.2
    price: 15000
`)
	require.NoError(t, os.WriteFile(path, v1, 0o644))

	store, err := refdata.NewStore(path, log)
	require.NoError(t, err)

	srv := newTestServer(t, nil)
	srv.deps.Catalog = store
	router := srv.Router()

	// Corrupt file: refresh fails, previous snapshot stays live.
	require.NoError(t, os.WriteFile(path, []byte("products: [broken"), 0o644))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/catalog/refresh", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "1", store.Snapshot().Version)

	v2 := bytes.Replace(v1, []byte(`version: "1"`), []byte(`version: "2"`), 1)
	require.NoError(t, os.WriteFile(path, v2, 0o644))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/catalog/refresh", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", store.Snapshot().Version)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestGetQuoteWithoutRepository(t *testing.T) {
	srv := newTestServer(t, nil)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/quotes/Q20260101-AAAAAAAA", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
