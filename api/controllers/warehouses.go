package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/stocklane/stocklane-backend/api/middleware"
	"github.com/stocklane/stocklane-backend/api/responses"
	"github.com/stocklane/stocklane-backend/api/validators"
	"github.com/stocklane/stocklane-backend/internal/directory"
)

// WarehousesController exposes read access to the warehouse topology.
type WarehousesController struct {
	repo directory.Repository
}

// NewWarehousesController wires the warehouse read endpoints.
func NewWarehousesController(repo directory.Repository) *WarehousesController {
	return &WarehousesController{repo: repo}
}

func (c *WarehousesController) List(w http.ResponseWriter, r *http.Request) {
	warehouses, err := c.repo.ListWarehouses(r.Context(), middleware.TenantID(r.Context()))
	if err != nil {
		responses.Error(w, err)
		return
	}
	responses.JSON(w, http.StatusOK, warehouses)
}

func (c *WarehousesController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := validators.PathUUID(r, "warehouseID")
	if err != nil {
		responses.Error(w, err)
		return
	}
	warehouse, err := c.repo.FindWarehouse(r.Context(), middleware.TenantID(r.Context()), id)
	if err != nil {
		responses.Error(w, err)
		return
	}
	responses.JSON(w, http.StatusOK, warehouse)
}

// Locations lists storage locations, optionally scoped to one warehouse.
func (c *WarehousesController) Locations(w http.ResponseWriter, r *http.Request) {
	warehouseID := uuid.Nil
	if value, err := validators.QueryUUID(r, "warehouse_id"); err != nil {
		responses.Error(w, err)
		return
	} else if value != nil {
		warehouseID = *value
	}

	locations, err := c.repo.ListLocations(r.Context(), middleware.TenantID(r.Context()), warehouseID)
	if err != nil {
		responses.Error(w, err)
		return
	}
	responses.JSON(w, http.StatusOK, locations)
}
