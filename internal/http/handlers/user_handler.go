// README: User profile and saved-address handlers.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"freshfold/internal/http/middleware"
	"freshfold/internal/modules/user"
	"freshfold/internal/types"
)

type UserHandler struct {
	users *user.Service
}

func NewUserHandler(svc *user.Service) *UserHandler {
	return &UserHandler{users: svc}
}

type upsertUserReq struct {
	Name           string         `json:"name"`
	Phone          string         `json:"phone"`
	DefaultAddress *types.Address `json:"default_address"`
}

type userResponse struct {
	ID             types.ID        `json:"id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email"`
	DefaultAddress *types.Address  `json:"default_address,omitempty"`
	SavedAddresses []types.Address `json:"saved_addresses"`
	CreatedAt      time.Time       `json:"created_at"`
}

func toUserResponse(u *user.User) userResponse {
	u.NormalizeAddresses()
	return userResponse{
		ID:             u.ID,
		Name:           u.Name,
		Phone:          u.Phone,
		Email:          u.Email,
		DefaultAddress: u.DefaultAddress,
		SavedAddresses: u.SavedAddresses,
		CreatedAt:      u.CreatedAt,
	}
}

// Upsert creates the profile on first call and updates it afterwards.
func (h *UserHandler) Upsert(c *gin.Context) {
	var req upsertUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" {
		writeError(c, http.StatusBadRequest, "name is required")
		return
	}
	u, err := h.users.Upsert(c.Request.Context(), user.UpsertCommand{
		FirebaseUID:    middleware.CallerUID(c),
		Email:          middleware.CallerEmail(c),
		Name:           req.Name,
		Phone:          req.Phone,
		DefaultAddress: req.DefaultAddress,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toUserResponse(u))
}

func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.users.GetByUID(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toUserResponse(u))
}

func (h *UserHandler) AddAddress(c *gin.Context) {
	var addr types.Address
	if err := c.ShouldBindJSON(&addr); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := h.users.AddAddress(c.Request.Context(), middleware.CallerUID(c), addr)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toUserResponse(u))
}

func (h *UserHandler) RemoveAddress(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid address index")
		return
	}
	u, err := h.users.RemoveAddress(c.Request.Context(), middleware.CallerUID(c), index)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toUserResponse(u))
}
