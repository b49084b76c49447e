package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dom/whats-cookin/internal/api/middleware"
	"github.com/dom/whats-cookin/internal/domain"
	"github.com/dom/whats-cookin/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type RecipeHandler struct {
	recipeService *service.RecipeService
	logger        *zap.Logger
}

func NewRecipeHandler(recipeService *service.RecipeService, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService, logger: logger}
}

type RecipeListResponse struct {
	Data  []*domain.Recipe `json:"data"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Total int64            `json:"total"`
}

type CreateRecipeRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Ingredients []string `json:"ingredients" validate:"required,min=1,dive,max=200"`
}

func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	page, err := queryInt(r, "page", service.DefaultPage)
	if err != nil {
		writeError(w, http.StatusBadRequest, service.ErrInvalidPage.Error())
		return
	}
	limit, err := queryInt(r, "limit", service.DefaultLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, service.ErrInvalidLimit.Error())
		return
	}

	result, err := h.recipeService.List(r.Context(), user.ID, page, limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPage) || errors.Is(err, service.ErrPageTooLarge) ||
			errors.Is(err, service.ErrInvalidLimit) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to list recipes", zap.Uint("user_id", user.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeJSON(w, http.StatusOK, RecipeListResponse{
		Data:  result.Recipes,
		Page:  result.Page,
		Limit: result.Limit,
		Total: result.Total,
	})
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateRecipeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recipe, err := h.recipeService.Create(r.Context(), user.ID, service.CreateRecipeInput{
		Name:        req.Name,
		Ingredients: req.Ingredients,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidRecipe) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to create recipe", zap.Uint("user_id", user.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeJSON(w, http.StatusCreated, recipe)
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "Invalid recipe id")
		return
	}

	err = h.recipeService.Delete(r.Context(), uint(id), user.ID)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, domain.ErrRecipeNotFound):
		writeError(w, http.StatusNotFound, "Recipe not found")
	case errors.Is(err, domain.ErrRecipeForbidden):
		writeError(w, http.StatusForbidden, "Forbidden")
	default:
		h.logger.Error("failed to delete recipe", zap.Uint64("recipe_id", id), zap.Uint("user_id", user.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
	}
}

// queryInt reads an integer query parameter, returning def when it is absent.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
