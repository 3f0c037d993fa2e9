package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"snipetrack-backend/application/valuation"
	"snipetrack-backend/pkg/common"
	apperrors "snipetrack-backend/pkg/errors"
	"snipetrack-backend/pkg/utils"
)

// ItemResolver resolves one asset's valuation.
type ItemResolver interface {
	Resolve(ctx context.Context, assetID int64) (valuation.Result, error)
}

// ItemHandler handles item valuation requests
type ItemHandler struct {
	resolver ItemResolver
	logger   *zap.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(resolver ItemResolver, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// ResolveItemRequest represents the request body for resolving an item
type ResolveItemRequest struct {
	AssetID int64 `json:"assetId" validate:"required,gt=0"`
}

// ResolveItemResponse mirrors the aggregator-backed valuation of one item
type ResolveItemResponse struct {
	Success      bool   `json:"success"`
	AssetID      int64  `json:"assetId"`
	Name         string `json:"name"`
	RAP          int64  `json:"rap"`
	Value        int64  `json:"value"`
	Price        int64  `json:"price"`
	IsLimited    bool   `json:"isLimited"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// ResolveItem handles POST /items/resolve
func (h *ItemHandler) ResolveItem(w http.ResponseWriter, r *http.Request) {
	var req ResolveItemRequest
	if err := common.ParseJSONBody(w, r, &req, 1<<20); err != nil {
		common.RespondError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, apperrors.NewValidationError(err.Error()))
		return
	}

	result, err := h.resolver.Resolve(r.Context(), req.AssetID)
	if err != nil {
		if apperrors.IsUpstream(err) {
			h.logger.Error("item resolution failed", zap.Int64("assetID", req.AssetID), zap.Error(err))
		}
		common.RespondError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, ResolveItemResponse{
		Success:      true,
		AssetID:      result.AssetID,
		Name:         result.Name,
		RAP:          result.RecentAveragePrice,
		Value:        result.Value,
		Price:        result.Price,
		IsLimited:    result.IsLimited,
		ThumbnailURL: result.ThumbnailURL,
	})
}
