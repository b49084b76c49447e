package handlers_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/dom/whats-cookin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

func TestKitchenHandler_AnalyzeIngredients(t *testing.T) {
	tests := []struct {
		name             string
		aiReply          string
		aiStatus         int
		contentType      string
		data             []byte
		expectedStatus   int
		expectedDetail   string
		wantIngredients  []string
		wantProviderCall bool
	}{
		{
			name:             "ingredients detected",
			aiReply:          `["chicken thighs", "onions", "garlic"]`,
			contentType:      "image/png",
			data:             pngBytes,
			expectedStatus:   http.StatusOK,
			wantIngredients:  []string{"chicken thighs", "onions", "garlic"},
			wantProviderCall: true,
		},
		{
			name:             "prose around the array",
			aiReply:          "Here you go:\n```json\n[\"tomato\"]\n```",
			contentType:      "image/jpeg",
			data:             []byte("jpeg bytes"),
			expectedStatus:   http.StatusOK,
			wantIngredients:  []string{"tomato"},
			wantProviderCall: true,
		},
		{
			name:           "not an image",
			contentType:    "text/plain",
			data:           []byte("hello"),
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "File must be an image (JPEG, PNG, etc.)",
		},
		{
			name:           "empty file",
			contentType:    "image/png",
			data:           []byte{},
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Uploaded file is empty",
		},
		{
			name:             "nothing detected",
			aiReply:          "I could not find any food in this picture.",
			contentType:      "image/png",
			data:             pngBytes,
			expectedStatus:   http.StatusBadRequest,
			expectedDetail:   "No ingredients detected in image. Please try a clearer photo.",
			wantProviderCall: true,
		},
		{
			name:             "provider down",
			aiStatus:         http.StatusBadGateway,
			contentType:      "image/png",
			data:             pngBytes,
			expectedStatus:   http.StatusServiceUnavailable,
			expectedDetail:   "AI service temporarily unavailable. Please try again.",
			wantProviderCall: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := testutil.NewTestServer(t)
			_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
			ts.AI.Reply(tt.aiReply)
			if tt.aiStatus != 0 {
				ts.AI.Fail(tt.aiStatus)
			}

			resp := ts.Upload(t, "/analyze-ingredients", token, "file", "fridge.png", tt.contentType, tt.data)

			assert.Equal(t, tt.wantProviderCall, len(ts.AI.Requests()) > 0)
			if tt.expectedDetail != "" {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedDetail)
				return
			}

			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			var body struct {
				Ingredients []string `json:"ingredients"`
			}
			testutil.AssertJSONResponse(t, resp, &body)
			assert.Equal(t, tt.wantIngredients, body.Ingredients)
		})
	}
}

func TestKitchenHandler_AnalyzeIngredients_RequestShape(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	ts.AI.Reply(`["egg"]`)

	resp := ts.Upload(t, "/analyze-ingredients", token, "file", "egg.png", "image/png", pngBytes)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	requests := ts.AI.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, ts.Config.OpenAIModel, requests[0]["model"])
	assert.Equal(t, float64(300), requests[0]["max_tokens"])
}

func TestKitchenHandler_AnalyzeIngredients_Rejects(t *testing.T) {
	ts := testutil.NewTestServer(t, testutil.WithMaxUploadBytes(64))
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	t.Run("missing file field", func(t *testing.T) {
		resp := ts.Upload(t, "/analyze-ingredients", token, "image", "egg.png", "image/png", pngBytes)
		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})

	t.Run("too large", func(t *testing.T) {
		resp := ts.Upload(t, "/analyze-ingredients", token, "file", "big.png", "image/png", bytes.Repeat([]byte{0xff}, 128))
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "Uploaded file is too large")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		resp := ts.Upload(t, "/analyze-ingredients", "", "file", "egg.png", "image/png", pngBytes)
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})

	assert.Empty(t, ts.AI.Requests())
}

func TestKitchenHandler_GetRecipes(t *testing.T) {
	tests := []struct {
		name           string
		aiReply        string
		aiStatus       int
		request        interface{}
		expectedStatus int
		expectedDetail string
		wantNames      []string
	}{
		{
			name: "recommendations returned",
			aiReply: `[{"name":"Chicken Stir Fry","link":"https://www.allrecipes.com/stir-fry"},` +
				`{"name":"Garlic Chicken","link":"https://www.seriouseats.com/garlic-chicken"}]`,
			request:        map[string]interface{}{"ingredients": []string{"chicken", "garlic"}},
			expectedStatus: http.StatusOK,
			wantNames:      []string{"Chicken Stir Fry", "Garlic Chicken"},
		},
		{
			name:           "bad entries are dropped",
			aiReply:        `Sure! [{"name":"Soup","link":"https://example.com/soup"},{"name":"No link"},42]`,
			request:        map[string]interface{}{"ingredients": []string{"leek"}},
			expectedStatus: http.StatusOK,
			wantNames:      []string{"Soup"},
		},
		{
			name:           "empty ingredients",
			request:        map[string]interface{}{"ingredients": []string{}},
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Ingredients list cannot be empty",
		},
		{
			name:           "missing ingredients",
			request:        map[string]interface{}{},
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Ingredients list cannot be empty",
		},
		{
			name:           "nothing parseable",
			aiReply:        "I'm not sure what to cook.",
			request:        map[string]interface{}{"ingredients": []string{"gravel"}},
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "No recipes found for these ingredients. Try different ingredients.",
		},
		{
			name:           "provider down",
			aiStatus:       http.StatusInternalServerError,
			request:        map[string]interface{}{"ingredients": []string{"egg"}},
			expectedStatus: http.StatusServiceUnavailable,
			expectedDetail: "AI service temporarily unavailable. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := testutil.NewTestServer(t)
			_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
			ts.AI.Reply(tt.aiReply)
			if tt.aiStatus != 0 {
				ts.AI.Fail(tt.aiStatus)
			}

			resp := ts.Do(t, http.MethodPost, "/get-recipes", token, tt.request)

			if tt.expectedDetail != "" {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedDetail)
				return
			}

			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			var body struct {
				Recommendations []struct {
					Name string `json:"name"`
					Link string `json:"link"`
				} `json:"recommendations"`
			}
			testutil.AssertJSONResponse(t, resp, &body)

			names := make([]string, 0, len(body.Recommendations))
			for _, rec := range body.Recommendations {
				assert.NotEmpty(t, rec.Link)
				names = append(names, rec.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestKitchenHandler_RateLimited(t *testing.T) {
	ts := testutil.NewTestServer(t, testutil.WithAIRateLimit(1))
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, otherToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	ts.AI.Reply(`[{"name":"Toast","link":"https://example.com/toast"}]`)

	request := map[string]interface{}{"ingredients": []string{"bread"}}

	// The burst is spent first, then the per-minute rate applies.
	var limited bool
	for i := 0; i < 10 && !limited; i++ {
		resp := ts.Do(t, http.MethodPost, "/get-recipes", token, request)
		limited = resp.StatusCode == http.StatusTooManyRequests
	}
	require.True(t, limited, "expected the limiter to trip")

	// Limits are per user.
	resp := ts.Do(t, http.MethodPost, "/get-recipes", otherToken, request)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
}
