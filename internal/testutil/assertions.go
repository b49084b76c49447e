package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v and verifies success
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies the status and the {"detail": ...} message of an error response
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedDetail string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	var body struct {
		Detail string `json:"detail"`
	}
	AssertJSONResponse(t, resp, &body)
	assert.Equal(t, expectedDetail, body.Detail, "error detail mismatch")
}

// AssertRecipeIDs verifies the ids of a recipe page in order
func AssertRecipeIDs(t *testing.T, expected []uint, got []uint) {
	t.Helper()
	assert.Equal(t, expected, got, "unexpected recipe ids")
}
