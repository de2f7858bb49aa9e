// README: Order handlers: create/list/get/cancel plus the driver-facing
// status and location updates.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"freshfold/internal/http/middleware"
	"freshfold/internal/modules/order"
	"freshfold/internal/modules/pricing"
	"freshfold/internal/types"
)

type OrderHandler struct {
	orders *order.Service
}

func NewOrderHandler(svc *order.Service) *OrderHandler {
	return &OrderHandler{orders: svc}
}

type createOrderReq struct {
	PickupAddress   types.Address `json:"pickup_address"`
	DeliveryAddress types.Address `json:"delivery_address"`
	ScheduledAt     time.Time     `json:"scheduled_at"`
	ServiceType     string        `json:"service_type"`
	ItemCount       int           `json:"item_count"`
	Notes           string        `json:"notes"`
}

type orderResponse struct {
	ID              types.ID        `json:"id"`
	Status          order.Status    `json:"status"`
	ServiceType     string          `json:"service_type"`
	ItemCount       int             `json:"item_count"`
	Price           float64         `json:"price"`
	Currency        string          `json:"currency"`
	PickupAddress   types.Address   `json:"pickup_address"`
	DeliveryAddress types.Address   `json:"delivery_address"`
	ScheduledAt     time.Time       `json:"scheduled_at"`
	DriverID        *types.ID       `json:"driver_id,omitempty"`
	DriverLocation  *types.GeoPoint `json:"driver_location,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type historyEntryResponse struct {
	OldStatus *order.Status `json:"old_status"`
	NewStatus order.Status  `json:"new_status"`
	Notes     string        `json:"notes,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

func toOrderResponse(o *order.Order) orderResponse {
	return orderResponse{
		ID:              o.ID,
		Status:          o.Status,
		ServiceType:     o.ServiceType,
		ItemCount:       o.ItemCount,
		Price:           o.Price.Dollars(),
		Currency:        o.Price.Currency,
		PickupAddress:   o.PickupAddress,
		DeliveryAddress: o.DeliveryAddress,
		ScheduledAt:     o.ScheduledAt,
		DriverID:        o.DriverID,
		DriverLocation:  o.DriverLocation,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	o, err := h.orders.Create(c.Request.Context(), order.CreateCommand{
		FirebaseUID:     middleware.CallerUID(c),
		PickupAddress:   req.PickupAddress,
		DeliveryAddress: req.DeliveryAddress,
		ScheduledAt:     req.ScheduledAt,
		ServiceType:     pricing.ServiceType(req.ServiceType),
		ItemCount:       req.ItemCount,
		Notes:           req.Notes,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toOrderResponse(o))
}

func (h *OrderHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	orders, err := h.orders.List(c.Request.Context(), middleware.CallerUID(c), order.ListFilter{
		Status: order.Status(c.Query("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	writeJSON(c, http.StatusOK, gin.H{"orders": out})
}

func (h *OrderHandler) Get(c *gin.Context) {
	o, history, err := h.orders.Get(c.Request.Context(), middleware.CallerUID(c), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	entries := make([]historyEntryResponse, 0, len(history))
	for _, e := range history {
		entries = append(entries, historyEntryResponse{
			OldStatus: e.OldStatus,
			NewStatus: e.NewStatus,
			Notes:     e.Notes,
			CreatedAt: e.CreatedAt,
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"order": toOrderResponse(o), "history": entries})
}

type cancelOrderReq struct {
	Notes string `json:"notes"`
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	var req cancelOrderReq
	_ = c.ShouldBindJSON(&req)
	o, err := h.orders.Cancel(c.Request.Context(), order.CancelCommand{
		FirebaseUID: middleware.CallerUID(c),
		OrderID:     types.ID(c.Param("id")),
		Notes:       req.Notes,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toOrderResponse(o))
}

type updateStatusReq struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// UpdateStatus is the driver/operator path; it is role-gated rather than
// owner-scoped.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	role := middleware.CallerRole(c)
	if role != "driver" && role != "operator" {
		writeError(c, http.StatusForbidden, "forbidden: driver or operator role required")
		return
	}
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	actor := types.ID(middleware.CallerUID(c))
	o, err := h.orders.Transition(c.Request.Context(), order.TransitionCommand{
		OrderID: types.ID(c.Param("id")),
		Target:  order.Status(req.Status),
		ActorID: &actor,
		Notes:   req.Notes,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toOrderResponse(o))
}

type updateLocationReq struct {
	// Pointers so an absent or null coordinate is distinguishable from a
	// legitimate zero.
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// UpdateLocation records the driver's latest position for an order.
func (h *OrderHandler) UpdateLocation(c *gin.Context) {
	if middleware.CallerRole(c) != "driver" {
		writeError(c, http.StatusForbidden, "forbidden: driver role required")
		return
	}
	var req updateLocationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(c, http.StatusBadRequest, "lat and lng are required")
		return
	}
	err := h.orders.UpdateLocation(c.Request.Context(), order.LocationCommand{
		OrderID:  types.ID(c.Param("id")),
		DriverID: types.ID(middleware.CallerUID(c)),
		Lat:      *req.Lat,
		Lng:      *req.Lng,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}
