// README: Catalog handlers: categories, vehicles, brands and free cars.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental/internal/modules/fleet"
	"carrental/internal/modules/pricing"
	"carrental/internal/types"
)

type FleetService interface {
	Browse(ctx context.Context, cats []fleet.Category, brands []string) ([]fleet.Vehicle, error)
	Brands(ctx context.Context) ([]string, error)
	FreeVehicles(ctx context.Context, start, end types.Date) ([]fleet.Vehicle, error)
}

type VehicleHandler struct {
	fleet    FleetService
	currency string
}

func NewVehicleHandler(fleet FleetService, currency string) *VehicleHandler {
	return &VehicleHandler{fleet: fleet, currency: currency}
}

type categoryResp struct {
	Category  fleet.Category `json:"category"`
	DailyRate types.Money    `json:"daily_rate"`
}

func (h *VehicleHandler) Categories(c *gin.Context) {
	out := make([]categoryResp, 0, len(fleet.Categories()))
	for _, cat := range fleet.Categories() {
		rate, _ := pricing.DailyRate(cat)
		out = append(out, categoryResp{Category: cat, DailyRate: types.NewMoney(rate, h.currency)})
	}
	writeJSON(c, http.StatusOK, out)
}

// List serves GET /api/vehicles?category=A&category=B&brand=Fiat.
func (h *VehicleHandler) List(c *gin.Context) {
	raw := c.QueryArray("category")
	cats := make([]fleet.Category, 0, len(raw))
	for _, s := range raw {
		cats = append(cats, fleet.Category(s))
	}
	vehicles, err := h.fleet.Browse(c.Request.Context(), cats, c.QueryArray("brand"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, vehicles)
}

func (h *VehicleHandler) Brands(c *gin.Context) {
	brands, err := h.fleet.Brands(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, brands)
}

// FreeCars serves GET /api/freeCar?startDay=YYYY-MM-DD&endDay=YYYY-MM-DD.
func (h *VehicleHandler) FreeCars(c *gin.Context) {
	start, ok := queryDate(c, "startDay")
	if !ok {
		return
	}
	end, ok := queryDate(c, "endDay")
	if !ok {
		return
	}
	vehicles, err := h.fleet.FreeVehicles(c.Request.Context(), start, end)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, vehicles)
}
