package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bigdrops/admin-portal/internal/everflow"
	"github.com/bigdrops/admin-portal/internal/model"
	"github.com/bigdrops/admin-portal/internal/repository"
)

// AdvertiserStore is the slice of the advertiser repository the handlers
// need.
type AdvertiserStore interface {
	Create(ctx context.Context, a model.Advertiser) (int64, error)
	GetByID(ctx context.Context, id int64) (model.Advertiser, error)
	List(ctx context.Context, limit, offset int) ([]model.Advertiser, error)
	Update(ctx context.Context, id int64, name, company, email, website, status string) (model.Advertiser, error)
	Delete(ctx context.Context, id int64) error
}

// AdvertiserFinder searches the tracking platform's advertiser list.  Nil
// means no API key is configured and pulls are rejected.
type AdvertiserFinder interface {
	FindAdvertiser(ctx context.Context, externalID string) (everflow.Advertiser, bool, error)
}

// AdvertiserHandler implements advertiser CRUD plus platform import.
type AdvertiserHandler struct {
	Advertisers AdvertiserStore
	Platform    AdvertiserFinder
	Audit       AuditStore
}

func NewAdvertiserHandler(s AdvertiserStore, platform AdvertiserFinder, audit AuditStore) *AdvertiserHandler {
	if s == nil || audit == nil {
		panic("nil store passed to NewAdvertiserHandler")
	}
	return &AdvertiserHandler{Advertisers: s, Platform: platform, Audit: audit}
}

type advertiserReq struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Website string `json:"website"`
	Status  string `json:"status"`
}

type advertiserResp struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Company    string    `json:"company"`
	Email      string    `json:"email"`
	Website    string    `json:"website"`
	Platform   string    `json:"platform"`
	ExternalID *string   `json:"external_id,omitempty"`
	CreatedVia string    `json:"created_via"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toAdvertiserResp(a model.Advertiser) advertiserResp {
	return advertiserResp{
		ID: a.ID, Name: a.Name, Company: a.Company, Email: a.Email,
		Website: a.Website, Platform: a.Platform, ExternalID: a.ExternalID,
		CreatedVia: a.CreatedVia, Status: a.Status,
		CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
	}
}

// List returns advertisers, newest first.
func (h *AdvertiserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	advs, err := h.Advertisers.List(ctx, queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]advertiserResp, 0, len(advs))
	for _, a := range advs {
		out = append(out, toAdvertiserResp(a))
	}
	return c.JSON(http.StatusOK, echo.Map{"advertisers": out})
}

// Get returns one advertiser.
func (h *AdvertiserHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Advertisers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "advertiser not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"advertiser": toAdvertiserResp(a)})
}

// Create inserts a manually entered advertiser.
func (h *AdvertiserHandler) Create(c echo.Context) error {
	var req advertiserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": []string{"name"}})
	}
	status := req.Status
	if status == "" {
		status = model.AdvertiserActive
	}
	if !model.ValidAdvertiserStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": []string{"status"}})
	}
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a := model.Advertiser{
		Name: req.Name, Company: req.Company, Email: req.Email,
		Website: req.Website, Platform: "everflow",
		CreatedVia: model.CreatedManual, Status: status, CreatedBy: &actorID,
	}
	id, err := h.Advertisers.Create(ctx, a)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "advertiser already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	a.ID = id
	return c.JSON(http.StatusCreated, echo.Map{"advertiser": toAdvertiserResp(a)})
}

// Update replaces the mutable fields of an advertiser.
func (h *AdvertiserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req advertiserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": []string{"name"}})
	}
	if req.Status == "" {
		req.Status = model.AdvertiserActive
	}
	if !model.ValidAdvertiserStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": []string{"status"}})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Advertisers.Update(ctx, id, req.Name, req.Company, req.Email, req.Website, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "advertiser not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"advertiser": toAdvertiserResp(a)})
}

// Delete removes an advertiser.
func (h *AdvertiserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Advertisers.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "advertiser not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

type pullReq struct {
	Platform     string `json:"platform"`
	AdvertiserID string `json:"advertiser_id"`
}

// Pull imports an advertiser from the tracking platform.  The platform has
// no by-id endpoint, so the full list is fetched and scanned for a matching
// id.  An id already imported for the platform yields 409 and no new row.
func (h *AdvertiserHandler) Pull(c echo.Context) error {
	var req pullReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.AdvertiserID = strings.TrimSpace(req.AdvertiserID)
	if req.AdvertiserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": []string{"advertiser_id"}})
	}
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if platform == "" {
		platform = "everflow"
	}
	if h.Platform == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "tracking platform not configured"})
	}
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 20*time.Second)
	defer cancel()

	match, found, err := h.Platform.FindAdvertiser(ctx, req.AdvertiserID)
	if err != nil {
		c.Logger().Errorf("platform advertiser lookup: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "tracking platform request failed"})
	}
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "advertiser not found on platform"})
	}

	externalID := match.ExternalID()
	a := model.Advertiser{
		Name:       match.Name,
		Platform:   platform,
		ExternalID: &externalID,
		CreatedVia: model.CreatedViaAPI,
		Status:     model.AdvertiserActive,
		CreatedBy:  &actorID,
	}
	id, err := h.Advertisers.Create(ctx, a)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "advertiser already imported"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	a.ID = id

	if err := h.Audit.Append(ctx, actorID, "advertiser.pull", "advertiser", id,
		map[string]any{"platform": platform, "external_id": externalID}); err != nil {
		c.Logger().Warnf("audit append for advertiser %d: %v", id, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"advertiser": toAdvertiserResp(a)})
}
