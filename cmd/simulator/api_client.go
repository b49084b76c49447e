package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			// AI calls can take most of a minute.
			Timeout: 90 * time.Second,
		},
	}
}

// Response types matching backend

type User struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Recipe struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
	UserID      uint     `json:"user_id"`
}

type RecipePage struct {
	Data  []Recipe `json:"data"`
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
	Total int64    `json:"total"`
}

type Recommendation struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// RegisterUser creates a new user account
func (c *APIClient) RegisterUser(name, email, password string) (*User, error) {
	body := map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}

	var user User
	if err := c.do(http.MethodPost, "/register", body, "", http.StatusOK, &user); err != nil {
		return nil, fmt.Errorf("register failed: %w", err)
	}
	return &user, nil
}

// Login returns a session token
func (c *APIClient) Login(email, password string) (string, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := c.do(http.MethodPost, "/login", body, "", http.StatusOK, &result); err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}
	return result.Token, nil
}

// CreateRecipe saves a recipe for the token's user
func (c *APIClient) CreateRecipe(token, name string, ingredients []string) (*Recipe, error) {
	body := map[string]interface{}{
		"name":        name,
		"ingredients": ingredients,
	}

	var recipe Recipe
	if err := c.do(http.MethodPost, "/recipes", body, token, http.StatusCreated, &recipe); err != nil {
		return nil, fmt.Errorf("create recipe failed: %w", err)
	}
	return &recipe, nil
}

// ListRecipes fetches one page of the token's recipes
func (c *APIClient) ListRecipes(token string, page, limit int) (*RecipePage, error) {
	var result RecipePage
	path := fmt.Sprintf("/recipes?page=%d&limit=%d", page, limit)
	if err := c.do(http.MethodGet, path, nil, token, http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("list recipes failed: %w", err)
	}
	return &result, nil
}

// AnalyzeImage uploads an image and returns the detected ingredients
func (c *APIClient) AnalyzeImage(token, filename, contentType string, image []byte) ([]string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(filename)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/analyze-ingredients", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	var result struct {
		Ingredients []string `json:"ingredients"`
	}
	if err := c.send(req, http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("analyze image failed: %w", err)
	}
	return result.Ingredients, nil
}

// GetRecipes asks for recommendations for ingredients
func (c *APIClient) GetRecipes(token string, ingredients []string) ([]Recommendation, error) {
	body := map[string]interface{}{"ingredients": ingredients}

	var result struct {
		Recommendations []Recommendation `json:"recommendations"`
	}
	if err := c.do(http.MethodPost, "/get-recipes", body, token, http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("get recipes failed: %w", err)
	}
	return result.Recommendations, nil
}

// HTTP helpers

func (c *APIClient) do(method, path string, body interface{}, token string, wantStatus int, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.send(req, wantStatus, out)
}

func (c *APIClient) send(req *http.Request, wantStatus int, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
