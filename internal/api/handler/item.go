package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/usecase"
)

// Request/Response types

// Price accepts a JSON number or a numeric string.
type Price struct {
	Value float64
	Set   bool
}

func (p *Price) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	raw = strings.Trim(raw, `"`)
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return model.ErrInvalidPrice
	}
	p.Value, p.Set = v, true
	return nil
}

type CreateItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       Price  `json:"price"`
}

type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       Price   `json:"price"`
}

type MediaResponse struct {
	ID         int64  `json:"id"`
	ItemID     int64  `json:"item_id"`
	Filename   string `json:"filename"`
	FileType   string `json:"file_type"`
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
}

type ItemResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	Media       []MediaResponse `json:"media"`
	CreatedAt   string          `json:"created_at"`
	ModifiedAt  string          `json:"modified_at"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ItemHandler handles item-related HTTP requests.
type ItemHandler struct {
	svc usecase.ItemService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(svc usecase.ItemService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

// List handles GET /v1/items and GET /v1/public/items
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListItems(r.Context())
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, lo.Map(items, func(it *model.Item, _ int) ItemResponse {
		return toItemResponse(it)
	}))
}

// Get handles GET /v1/items/{id} and GET /v1/public/items/{id}
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		Error(w, http.StatusBadRequest, "invalid_item_id", "Invalid item ID")
		return
	}

	item, err := h.svc.GetItem(r.Context(), id)
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, toItemResponse(item))
}

// Create handles POST /v1/items
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, model.ErrInvalidPrice) {
			ServiceError(w, r, err)
			return
		}
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if req.Name == "" || req.Description == "" || !req.Price.Set {
		Error(w, http.StatusBadRequest, "invalid_request", "Name, description, and price are required")
		return
	}

	item, err := h.svc.CreateItem(r.Context(), usecase.CreateItemInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price.Value,
	})
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusCreated, toItemResponse(item))
}

// Update handles PUT /v1/items/{id}
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		Error(w, http.StatusBadRequest, "invalid_item_id", "Invalid item ID")
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, model.ErrInvalidPrice) {
			ServiceError(w, r, err)
			return
		}
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	patch := model.ItemPatch{Name: req.Name, Description: req.Description}
	if req.Price.Set {
		patch.Price = &req.Price.Value
	}

	item, err := h.svc.UpdateItem(r.Context(), id, patch)
	if err != nil {
		ServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, toItemResponse(item))
}

// Delete handles DELETE /v1/items/{id}
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		Error(w, http.StatusBadRequest, "invalid_item_id", "Invalid item ID")
		return
	}

	if err := h.svc.DeleteItem(r.Context(), id); err != nil {
		ServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, MessageResponse{Message: "Item deleted successfully"})
}

func toItemResponse(it *model.Item) ItemResponse {
	media := it.Media
	if media == nil {
		media = []model.ItemMedia{}
	}
	return ItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Price:       it.Price,
		Media:       lo.Map(media, func(m model.ItemMedia, _ int) MediaResponse { return toMediaResponse(&m) }),
		CreatedAt:   formatTime(it.CreatedAt),
		ModifiedAt:  formatTime(it.ModifiedAt),
	}
}

func toMediaResponse(m *model.ItemMedia) MediaResponse {
	return MediaResponse{
		ID:         m.ID,
		ItemID:     m.ItemID,
		Filename:   m.Filename,
		FileType:   m.Kind.String(),
		CreatedAt:  formatTime(m.CreatedAt),
		ModifiedAt: formatTime(m.ModifiedAt),
	}
}
