package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apppf "snipetrack-backend/application/portfolio"
	domain "snipetrack-backend/domain/portfolio"
	"snipetrack-backend/pkg/common"
	apperrors "snipetrack-backend/pkg/errors"
	"snipetrack-backend/pkg/utils"
)

// PortfolioHandler handles tracked-item requests
type PortfolioHandler struct {
	reconciler *apppf.Reconciler
	logger     *zap.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(reconciler *apppf.Reconciler, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		reconciler: reconciler,
		logger:     logger,
	}
}

// PortfolioResponse carries the tracked items and their aggregate stats
type PortfolioResponse struct {
	Success bool                 `json:"success"`
	Items   []domain.TrackedItem `json:"items"`
	Stats   domain.Stats         `json:"stats"`
}

// AddItemRequest represents the request body for tracking one item
type AddItemRequest struct {
	AssetID   int64 `json:"assetId" validate:"required,gt=0"`
	BoughtFor int64 `json:"boughtFor" validate:"min=0"`
}

// ImportTransactionRequest represents the request body for importing a
// scanned purchase
type ImportTransactionRequest struct {
	AssetID      int64     `json:"assetId" validate:"required,gt=0"`
	AssetName    string    `json:"assetName" validate:"required"`
	RobuxSpent   int64     `json:"robuxSpent" validate:"min=0"`
	Created      time.Time `json:"created"`
	CurrentRAP   *int64    `json:"currentRap,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
}

// BulkAddRequest represents the request body for a manual bulk import
type BulkAddRequest struct {
	Items []BulkAddEntry `json:"items" validate:"required,min=1,max=100,dive"`
}

// BulkAddEntry is one row of a bulk import
type BulkAddEntry struct {
	AssetID   int64 `json:"assetId" validate:"required,gt=0"`
	BoughtFor int64 `json:"boughtFor" validate:"min=0"`
}

// ItemResponse wraps a single tracked item
type ItemResponse struct {
	Success bool               `json:"success"`
	Item    domain.TrackedItem `json:"item"`
}

// BulkAddResponse reports what a bulk import did
type BulkAddResponse struct {
	Success bool                 `json:"success"`
	Added   []domain.TrackedItem `json:"added"`
	Skipped int                  `json:"skipped"`
}

// GetPortfolio handles GET /portfolio
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	items, stats, err := h.reconciler.List(r.Context())
	if err != nil {
		h.logger.Error("portfolio list failed", zap.Error(err))
		common.RespondError(w, err)
		return
	}
	if items == nil {
		items = []domain.TrackedItem{}
	}

	common.RespondJSON(w, http.StatusOK, PortfolioResponse{
		Success: true,
		Items:   items,
		Stats:   stats,
	})
}

// AddItem handles POST /portfolio/items
func (h *PortfolioHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := common.ParseJSONBody(w, r, &req, 1<<20); err != nil {
		common.RespondError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, apperrors.NewValidationError(err.Error()))
		return
	}

	item, err := h.reconciler.Add(r.Context(), req.AssetID, req.BoughtFor)
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, ItemResponse{Success: true, Item: item})
}

// ImportTransaction handles POST /portfolio/items/import
func (h *PortfolioHandler) ImportTransaction(w http.ResponseWriter, r *http.Request) {
	var req ImportTransactionRequest
	if err := common.ParseJSONBody(w, r, &req, 1<<20); err != nil {
		common.RespondError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, apperrors.NewValidationError(err.Error()))
		return
	}

	item, err := h.reconciler.ImportTransaction(r.Context(), apppf.TransactionCandidate{
		AssetID:      req.AssetID,
		AssetName:    req.AssetName,
		RobuxSpent:   req.RobuxSpent,
		Created:      req.Created,
		CurrentRAP:   req.CurrentRAP,
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, ItemResponse{Success: true, Item: item})
}

// BulkAdd handles POST /portfolio/items/bulk
func (h *PortfolioHandler) BulkAdd(w http.ResponseWriter, r *http.Request) {
	var req BulkAddRequest
	if err := common.ParseJSONBody(w, r, &req, 1<<20); err != nil {
		common.RespondError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, apperrors.NewValidationError(err.Error()))
		return
	}

	candidates := make([]apppf.BulkCandidate, 0, len(req.Items))
	for _, entry := range req.Items {
		candidates = append(candidates, apppf.BulkCandidate{
			AssetID:   entry.AssetID,
			BoughtFor: entry.BoughtFor,
		})
	}

	added, skipped, err := h.reconciler.BulkAdd(r.Context(), candidates)
	if err != nil {
		common.RespondError(w, err)
		return
	}
	if added == nil {
		added = []domain.TrackedItem{}
	}

	common.RespondJSON(w, http.StatusOK, BulkAddResponse{
		Success: true,
		Added:   added,
		Skipped: skipped,
	})
}

// RemoveItem handles DELETE /portfolio/items/{itemID}
func (h *PortfolioHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		common.RespondError(w, apperrors.NewValidationError("item ID is required"))
		return
	}

	if err := h.reconciler.Remove(r.Context(), itemID); err != nil {
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// RefreshValuations handles POST /portfolio/refresh
func (h *PortfolioHandler) RefreshValuations(w http.ResponseWriter, r *http.Request) {
	items, stats, err := h.reconciler.RefreshValuations(r.Context())
	if err != nil {
		h.logger.Error("portfolio refresh failed", zap.Error(err))
		common.RespondError(w, err)
		return
	}
	if items == nil {
		items = []domain.TrackedItem{}
	}

	common.RespondJSON(w, http.StatusOK, PortfolioResponse{
		Success: true,
		Items:   items,
		Stats:   stats,
	})
}
