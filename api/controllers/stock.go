package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/stocklane/stocklane-backend/api/middleware"
	"github.com/stocklane/stocklane-backend/api/responses"
	"github.com/stocklane/stocklane-backend/api/validators"
	"github.com/stocklane/stocklane-backend/internal/stock"
	"github.com/stocklane/stocklane-backend/pkg/db/models"
)

// StockController exposes read access to stock levels.
type StockController struct {
	repo stock.Repository
}

// NewStockController wires the stock read endpoints.
func NewStockController(repo stock.Repository) *StockController {
	return &StockController{repo: repo}
}

type stockLevelView struct {
	ProductID    uuid.UUID `json:"product_id"`
	LocationID   uuid.UUID `json:"location_id"`
	Batch        string    `json:"batch,omitempty"`
	OnHandQty    string    `json:"on_hand_qty"`
	ReservedQty  string    `json:"reserved_qty"`
	AvailableQty string    `json:"available_qty"`
}

// Levels lists stock levels for the tenant, optionally scoped to one location.
func (c *StockController) Levels(w http.ResponseWriter, r *http.Request) {
	locationID := uuid.Nil
	if value, err := validators.QueryUUID(r, "location_id"); err != nil {
		responses.Error(w, err)
		return
	} else if value != nil {
		locationID = *value
	}

	levels, err := c.repo.ListLevels(r.Context(), middleware.TenantID(r.Context()), locationID)
	if err != nil {
		responses.Error(w, err)
		return
	}

	views := make([]stockLevelView, 0, len(levels))
	for _, level := range levels {
		views = append(views, toStockLevelView(level))
	}
	responses.JSON(w, http.StatusOK, views)
}

func toStockLevelView(level models.StockLevel) stockLevelView {
	return stockLevelView{
		ProductID:    level.ProductID,
		LocationID:   level.LocationID,
		Batch:        level.Batch,
		OnHandQty:    level.OnHandQty.String(),
		ReservedQty:  level.ReservedQty.String(),
		AvailableQty: level.AvailableQty().String(),
	}
}
