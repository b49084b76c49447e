package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dom/whats-cookin/internal/ai"
	"github.com/dom/whats-cookin/internal/domain"
	"github.com/dom/whats-cookin/internal/service"
	"go.uber.org/zap"
)

const (
	msgAIUnavailable = "AI service temporarily unavailable. Please try again."
	uploadField      = "file"
)

type KitchenHandler struct {
	kitchenService *service.KitchenService
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewKitchenHandler(kitchenService *service.KitchenService, maxUploadBytes int64, logger *zap.Logger) *KitchenHandler {
	return &KitchenHandler{
		kitchenService: kitchenService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

type IngredientsResponse struct {
	Ingredients []string `json:"ingredients"`
}

type RecommendRequest struct {
	Ingredients []string `json:"ingredients"`
}

type RecommendationsResponse struct {
	Recommendations []domain.Recommendation `json:"recommendations"`
}

// AnalyzeIngredients accepts a multipart image upload in the "file" field.
func (h *KitchenHandler) AnalyzeIngredients(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusBadRequest, "Uploaded file is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "An image file is required in the \"file\" field")
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		writeError(w, http.StatusBadRequest, "File must be an image (JPEG, PNG, etc.)")
		return
	}

	image, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	if int64(len(image)) > h.maxUploadBytes {
		writeError(w, http.StatusBadRequest, "Uploaded file is too large")
		return
	}

	ingredients, err := h.kitchenService.AnalyzeImage(r.Context(), image)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyImage):
			writeError(w, http.StatusBadRequest, "Uploaded file is empty")
		case errors.Is(err, service.ErrNoIngredients):
			writeError(w, http.StatusBadRequest, "No ingredients detected in image. Please try a clearer photo.")
		default:
			h.writeAIError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, IngredientsResponse{Ingredients: ingredients})
}

func (h *KitchenHandler) GetRecipes(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recommendations, err := h.kitchenService.Recommend(r.Context(), req.Ingredients)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyIngredients):
			writeError(w, http.StatusBadRequest, "Ingredients list cannot be empty")
		case errors.Is(err, service.ErrNoRecommendations):
			writeError(w, http.StatusBadRequest, "No recipes found for these ingredients. Try different ingredients.")
		default:
			h.writeAIError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, RecommendationsResponse{Recommendations: recommendations})
}

func (h *KitchenHandler) writeAIError(w http.ResponseWriter, err error) {
	if errors.Is(err, ai.ErrProviderUnavailable) || errors.Is(err, ai.ErrProviderMalformedReply) {
		writeError(w, http.StatusServiceUnavailable, msgAIUnavailable)
		return
	}
	h.logger.Error("AI request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, msgInternalError)
}
