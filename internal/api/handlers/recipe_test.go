package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/dom/whats-cookin/internal/domain"
	"github.com/dom/whats-cookin/internal/testutil"
	"github.com/stretchr/testify/assert"
)

type recipeJSON struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
	UserID      uint     `json:"user_id"`
}

type recipePageJSON struct {
	Data  []recipeJSON `json:"data"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
	Total int64        `json:"total"`
}

func TestRecipeHandler_List(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	other, _ := testutil.NewUserBuilder().Build(t, ts.DB)

	recipes := testutil.CreateRecipes(t, ts.DB, user, 25)
	testutil.CreateRecipes(t, ts.DB, other, 3)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		wantPage       int
		wantLimit      int
		wantIDs        []uint
	}{
		{
			name:           "defaults",
			query:          "",
			expectedStatus: http.StatusOK,
			wantPage:       1,
			wantLimit:      10,
			wantIDs:        ids(recipes[0:10]),
		},
		{
			name:           "second page",
			query:          "?page=2&limit=10",
			expectedStatus: http.StatusOK,
			wantPage:       2,
			wantLimit:      10,
			wantIDs:        ids(recipes[10:20]),
		},
		{
			name:           "last page",
			query:          "?page=3&limit=10",
			expectedStatus: http.StatusOK,
			wantPage:       3,
			wantLimit:      10,
			wantIDs:        ids(recipes[20:25]),
		},
		{name: "page zero", query: "?page=0", expectedStatus: http.StatusBadRequest},
		{name: "non-numeric page", query: "?page=two", expectedStatus: http.StatusBadRequest},
		{name: "limit too large", query: "?limit=101", expectedStatus: http.StatusBadRequest},
		{name: "negative limit", query: "?limit=-5", expectedStatus: http.StatusBadRequest},
		{name: "page offset overflows", query: "?page=9223372036854775807&limit=10", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.Do(t, http.MethodGet, "/recipes"+tt.query, token, nil)
			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var page recipePageJSON
			testutil.AssertJSONResponse(t, resp, &page)
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, tt.wantLimit, page.Limit)
			assert.Equal(t, int64(25), page.Total)

			got := make([]uint, 0, len(page.Data))
			for _, r := range page.Data {
				assert.Equal(t, user.ID, r.UserID)
				assert.NotEmpty(t, r.Ingredients)
				got = append(got, r.ID)
			}
			testutil.AssertRecipeIDs(t, tt.wantIDs, got)
		})
	}
}

func TestRecipeHandler_List_EmptyIsArray(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	resp := ts.Do(t, http.MethodGet, "/recipes", token, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var body map[string]interface{}
	testutil.AssertJSONResponse(t, resp, &body)
	assert.Equal(t, []interface{}{}, body["data"])
	assert.Equal(t, float64(0), body["total"])
}

func TestRecipeHandler_Create(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	tests := []struct {
		name           string
		request        map[string]interface{}
		expectedStatus int
	}{
		{
			name:           "saved",
			request:        map[string]interface{}{"name": "Fried Rice", "ingredients": []string{"rice", "egg", "scallions"}},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing name",
			request:        map[string]interface{}{"ingredients": []string{"rice"}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "no ingredients",
			request:        map[string]interface{}{"name": "Nothing", "ingredients": []string{}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "blank ingredients only",
			request:        map[string]interface{}{"name": "Blank", "ingredients": []string{"  "}},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.Do(t, http.MethodPost, "/recipes", token, tt.request)
			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			if tt.expectedStatus != http.StatusCreated {
				return
			}

			var recipe recipeJSON
			testutil.AssertJSONResponse(t, resp, &recipe)
			assert.NotZero(t, recipe.ID)
			assert.Equal(t, user.ID, recipe.UserID)
			assert.Equal(t, "Fried Rice", recipe.Name)
			assert.Equal(t, []string{"rice", "egg", "scallions"}, recipe.Ingredients)
		})
	}
}

func TestRecipeHandler_Delete(t *testing.T) {
	ts := testutil.NewTestServer(t)
	owner, ownerToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, intruderToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	recipe := testutil.NewRecipeBuilder().WithOwner(owner).Build(t, ts.DB)

	tests := []struct {
		name           string
		path           string
		token          string
		expectedStatus int
		expectedDetail string
	}{
		{name: "non-owner", path: fmt.Sprintf("/recipes/%d", recipe.ID), token: intruderToken, expectedStatus: http.StatusForbidden, expectedDetail: "Forbidden"},
		{name: "not found", path: fmt.Sprintf("/recipes/%d", recipe.ID+100), token: ownerToken, expectedStatus: http.StatusNotFound, expectedDetail: "Recipe not found"},
		{name: "invalid id", path: "/recipes/abc", token: ownerToken, expectedStatus: http.StatusBadRequest, expectedDetail: "Invalid recipe id"},
		{name: "zero id", path: "/recipes/0", token: ownerToken, expectedStatus: http.StatusBadRequest, expectedDetail: "Invalid recipe id"},
		{name: "unauthenticated", path: fmt.Sprintf("/recipes/%d", recipe.ID), token: "", expectedStatus: http.StatusUnauthorized, expectedDetail: "Authorization header required"},
		{name: "owner", path: fmt.Sprintf("/recipes/%d", recipe.ID), token: ownerToken, expectedStatus: http.StatusNoContent},
		{name: "already deleted", path: fmt.Sprintf("/recipes/%d", recipe.ID), token: ownerToken, expectedStatus: http.StatusNotFound, expectedDetail: "Recipe not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.Do(t, http.MethodDelete, tt.path, tt.token, nil)
			if tt.expectedDetail != "" {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedDetail)
				return
			}
			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
		})
	}

	_, err := ts.Repos.Recipe.GetByID(context.Background(), recipe.ID)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func ids(recipes []*domain.Recipe) []uint {
	out := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.ID)
	}
	return out
}
