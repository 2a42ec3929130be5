package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bigdrops/admin-portal/internal/config"
	"github.com/bigdrops/admin-portal/internal/model"
	"github.com/bigdrops/admin-portal/internal/repository"
)

// AdminUserStore is the slice of the user repository the admin endpoints
// need.
type AdminUserStore interface {
	Create(ctx context.Context, email, password, firstName, lastName, role string, cost int) (int64, error)
	List(ctx context.Context, limit, offset int) ([]model.User, error)
	Update(ctx context.Context, id int64, firstName, lastName, role string, isActive bool) error
	GetByID(ctx context.Context, id int64) (model.User, error)
	Deactivate(ctx context.Context, id int64) error
}

// UserAdminHandler implements staff account management.  Accounts are never
// hard-deleted; delete deactivates.
type UserAdminHandler struct {
	Cfg   config.Config
	Users AdminUserStore
}

func NewUserAdminHandler(cfg config.Config, users AdminUserStore) *UserAdminHandler {
	return &UserAdminHandler{Cfg: cfg, Users: users}
}

type createUserReq struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type updateUserReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	IsActive  *bool  `json:"is_active"`
}

type adminUserResp struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toAdminUserResp(u model.User) adminUserResp {
	return adminUserResp{
		ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName,
		Role: u.Role, IsActive: u.IsActive, LastLogin: u.LastLogin, CreatedAt: u.CreatedAt,
	}
}

// List returns staff accounts.
func (h *UserAdminHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx, queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]adminUserResp, 0, len(users))
	for _, u := range users {
		out = append(out, toAdminUserResp(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// Create adds a staff account.
func (h *UserAdminHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	var missing []string
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		missing = append(missing, "email")
	}
	if len(req.Password) < 8 {
		missing = append(missing, "password")
	}
	if req.Role == "" {
		req.Role = model.RoleUser
	}
	if !model.ValidRole(req.Role) {
		missing = append(missing, "role")
	}
	if len(missing) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": missing})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Users.Create(ctx, req.Email, req.Password, req.FirstName, req.LastName, req.Role, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": echo.Map{"id": id, "email": req.Email, "role": req.Role}})
}

// Update changes name, role and active flag.
func (h *UserAdminHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	firstName := u.FirstName
	if req.FirstName != "" {
		firstName = req.FirstName
	}
	lastName := u.LastName
	if req.LastName != "" {
		lastName = req.LastName
	}
	role := u.Role
	if req.Role != "" {
		if !model.ValidRole(req.Role) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": []string{"role"}})
		}
		role = req.Role
	}
	isActive := u.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	if err := h.Users.Update(ctx, id, firstName, lastName, role, isActive); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	u.FirstName, u.LastName, u.Role, u.IsActive = firstName, lastName, role, isActive
	return c.JSON(http.StatusOK, echo.Map{"user": toAdminUserResp(u)})
}

// Delete deactivates an account.
func (h *UserAdminHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
