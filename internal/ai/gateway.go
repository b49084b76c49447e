package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dom/whats-cookin/internal/domain"
	"github.com/dom/whats-cookin/internal/metrics"
	"go.uber.org/zap"
)

const (
	detectIngredientsPrompt = `Analyze this image and list all the food ingredients you can identify. ` +
		`Return ONLY a JSON array of the ingredient names, nothing else. Example: ["chicken thighs", "onions", "garlic"]`

	recommendRecipesPrompt = `Given these ingredients: %s

Suggest %d recipe ideas that can be made with these ingredients. For each recipe, provide:
1. A descriptive recipe name
2. A link to a highly-rated recipe from popular cooking websites (AllRecipes, BonAppetit, SeriousEats, NYTimes Cooking, Food Network, etc.)

Return ONLY a JSON array in this exact format, nothing else:
[
  {"name": "Recipe Name", "link": "https://..."},
  {"name": "Recipe Name", "link": "https://..."}
]`

	recommendationCount = 5

	detectMaxTokens    = 300
	recommendMaxTokens = 800

	opDetectIngredients = "detect_ingredients"
	opRecommendRecipes  = "recommend_recipes"
)

// Completer is the chat completion transport the gateway depends on.
type Completer interface {
	Complete(ctx context.Context, parts []ContentPart, maxTokens int) (string, error)
}

// Gateway wraps the two AI calls the service exposes. A reply that cannot be parsed yields an
// empty result, not an error; only transport and envelope failures are returned.
type Gateway struct {
	client  Completer
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewGateway(client Completer, m *metrics.Metrics, logger *zap.Logger) *Gateway {
	return &Gateway{
		client:  client,
		metrics: m,
		logger:  logger,
	}
}

// DetectIngredients asks the vision model which ingredients appear in image.
func (g *Gateway) DetectIngredients(ctx context.Context, image []byte) ([]string, error) {
	start := time.Now()

	parts := []ContentPart{
		{Type: "text", Text: detectIngredientsPrompt},
		{Type: "image_url", ImageURL: &ImageURL{URL: imageDataURL(image)}},
	}

	reply, err := g.client.Complete(ctx, parts, detectMaxTokens)
	if err != nil {
		g.record(opDetectIngredients, err, 0, start)
		return nil, fmt.Errorf("detect ingredients: %w", err)
	}

	ingredients := ParseIngredients(reply)
	g.record(opDetectIngredients, nil, len(ingredients), start)
	if len(ingredients) == 0 {
		g.logger.Info("AI reply held no ingredients", zap.Int("reply_length", len(reply)))
	}
	return ingredients, nil
}

// RecommendRecipes asks the model for recipe ideas using ingredients.
func (g *Gateway) RecommendRecipes(ctx context.Context, ingredients []string) ([]domain.Recommendation, error) {
	start := time.Now()

	prompt := fmt.Sprintf(recommendRecipesPrompt, strings.Join(ingredients, ", "), recommendationCount)
	parts := []ContentPart{{Type: "text", Text: prompt}}

	reply, err := g.client.Complete(ctx, parts, recommendMaxTokens)
	if err != nil {
		g.record(opRecommendRecipes, err, 0, start)
		return nil, fmt.Errorf("recommend recipes: %w", err)
	}

	recommendations := ParseRecommendations(reply)
	g.record(opRecommendRecipes, nil, len(recommendations), start)
	if len(recommendations) == 0 {
		g.logger.Info("AI reply held no recommendations", zap.Int("reply_length", len(reply)))
	}
	return recommendations, nil
}

func (g *Gateway) record(operation string, err error, results int, start time.Time) {
	outcome := metrics.OutcomeSuccess
	switch {
	case errors.Is(err, ErrProviderMalformedReply):
		outcome = metrics.OutcomeMalformed
	case err != nil:
		outcome = metrics.OutcomeUnavailable
	case results == 0:
		outcome = metrics.OutcomeEmpty
	}
	g.metrics.RecordAIRequest(operation, outcome, time.Since(start))

	if err != nil {
		g.logger.Error("AI provider call failed", zap.String("operation", operation), zap.Error(err))
	}
}

// imageDataURL encodes image as a base64 data URL. Content that does not sniff as an image is sent as JPEG.
func imageDataURL(image []byte) string {
	mimeType := http.DetectContentType(image)
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
}
