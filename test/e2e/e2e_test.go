// test/e2e/e2e_test.go
//
// End-to-end tests against a running selector service. Set SELECTOR_E2E_URL
// to the service base URL (e.g. http://localhost:8080) to enable them; they
// skip otherwise so the regular test run stays hermetic.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quoteIDPattern = regexp.MustCompile(`^Q\d{8}-[0-9A-F]{8}$`)

type conversationResponse struct {
	SessionID string          `json:"session_id"`
	State     json.RawMessage `json:"state"`
	Prompt    string          `json:"prompt,omitempty"`
	Completed bool            `json:"completed"`
	Error     *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Quote *struct {
		ID          string `json:"quote_id"`
		Requirement struct {
			AirflowM3Min      float64 `json:"airflow_m3_min"`
			TotalPressureMbar float64 `json:"total_pressure_mbar"`
		} `json:"requirement"`
		Matches []struct {
			Category string `json:"category"`
			Product  struct {
				Model string `json:"model"`
			} `json:"product"`
		} `json:"ranked_matches"`
	} `json:"quote,omitempty"`
}

func baseURL(t *testing.T) string {
	url := os.Getenv("SELECTOR_E2E_URL")
	if url == "" {
		t.Skip("SELECTOR_E2E_URL not set; skipping end-to-end tests")
	}
	return url
}

func postTurn(t *testing.T, client *http.Client, url string, state json.RawMessage, answer string) conversationResponse {
	t.Helper()

	payload := map[string]interface{}{"answer": answer}
	if state != nil {
		payload["state"] = state
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := client.Post(url+"/api/v1/conversation", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out conversationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	url := baseURL(t)
	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Get(url + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCatalogEndpoint(t *testing.T) {
	url := baseURL(t)
	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Get(url + "/api/v1/catalog")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Products []struct {
			Model      string  `json:"model"`
			AirflowMax float64 `json:"airflow_max"`
		} `json:"products"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Products)
}

func TestFullConversationProducesQuote(t *testing.T) {
	url := baseURL(t)
	client := &http.Client{Timeout: 30 * time.Second}

	answers := []string{
		"compression",
		"cape town",
		"waste water",
		"normal",
		"1 single",
		"5 4 4",
		"default",
		"default",
		"ops@plant.co.za",
	}

	var state json.RawMessage
	var last conversationResponse
	for i, answer := range answers {
		last = postTurn(t, client, url, state, answer)
		require.Nil(t, last.Error, "turn %d (%q) rejected: %+v", i, answer, last.Error)
		state = last.State
	}

	require.True(t, last.Completed)
	require.NotNil(t, last.Quote)
	assert.Regexp(t, quoteIDPattern, last.Quote.ID)
	assert.Greater(t, last.Quote.Requirement.AirflowM3Min, 0.0)
	assert.Greater(t, last.Quote.Requirement.TotalPressureMbar, 0.0)
	assert.LessOrEqual(t, len(last.Quote.Matches), 3)
	for _, m := range last.Quote.Matches {
		assert.NotEmpty(t, m.Product.Model)
		assert.NotEmpty(t, m.Category)
	}
}

func TestInvalidAnswerKeepsState(t *testing.T) {
	url := baseURL(t)
	client := &http.Client{Timeout: 10 * time.Second}

	first := postTurn(t, client, url, nil, "compression")
	require.Nil(t, first.Error)

	bad := postTurn(t, client, url, first.State, "atlantis")
	require.NotNil(t, bad.Error)
	assert.Equal(t, "UNKNOWN_LOCATION", bad.Error.Code)
	assert.False(t, bad.Completed)
	assert.JSONEq(t, string(first.State), string(bad.State))

	// The same state still accepts a valid answer.
	good := postTurn(t, client, url, bad.State, "durban")
	require.Nil(t, good.Error, fmt.Sprintf("%+v", good.Error))
}
