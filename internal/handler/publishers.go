package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bigdrops/admin-portal/internal/model"
	"github.com/bigdrops/admin-portal/internal/repository"
)

// PublisherStore is the slice of the request repository the staff-facing
// publisher CRUD endpoints need.  Publishers are stored as publisher
// request rows; the CRUD surface edits the submission fields while the
// decision stamps stay owned by the review workflow.
type PublisherStore interface {
	Create(ctx context.Context, pr model.PublisherRequest) (int64, error)
	GetByID(ctx context.Context, id int64) (model.PublisherRequest, error)
	List(ctx context.Context, q repository.RequestQuery) ([]model.PublisherRequest, int64, error)
	Update(ctx context.Context, id int64, u repository.RequestUpdate) (model.PublisherRequest, error)
	Delete(ctx context.Context, id int64) error
}

// PublisherHandler implements staff CRUD over publisher records.
type PublisherHandler struct {
	Publishers PublisherStore
	Offers     OfferNamer
}

func NewPublisherHandler(s PublisherStore, offers OfferNamer) *PublisherHandler {
	if s == nil {
		panic("nil store passed to NewPublisherHandler")
	}
	return &PublisherHandler{Publishers: s, Offers: offers}
}

type publisherReq struct {
	PublisherName string  `json:"publisher_name"`
	Email         string  `json:"email"`
	CompanyName   string  `json:"company_name"`
	TelegramID    *string `json:"telegram_id"`
	OfferID       string  `json:"offer_id"`
	CreativeType  string  `json:"creative_type"`
	Priority      string  `json:"priority"`
	AdminNotes    *string `json:"admin_notes"`
	ClientNotes   *string `json:"client_notes"`
}

func (r *publisherReq) normalize() []string {
	r.PublisherName = strings.TrimSpace(r.PublisherName)
	r.Email = strings.TrimSpace(r.Email)
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.OfferID = strings.TrimSpace(r.OfferID)
	r.CreativeType = strings.TrimSpace(r.CreativeType)
	if r.Priority == "" {
		r.Priority = model.PriorityMedium
	}

	var missing []string
	if r.PublisherName == "" {
		missing = append(missing, "publisher_name")
	}
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		missing = append(missing, "email")
	}
	if r.OfferID == "" {
		missing = append(missing, "offer_id")
	}
	if !model.ValidPriority(r.Priority) {
		missing = append(missing, "priority")
	}
	return missing
}

// List returns publisher records with the same pagination, search and
// filter surface as the dashboard request listing.
func (h *PublisherHandler) List(c echo.Context) error {
	q := repository.RequestQuery{
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
		SortBy:   c.QueryParam("sort_by"),
		SortDir:  c.QueryParam("sort_dir"),
		Limit:    queryInt(c, "limit", 50),
		Offset:   queryInt(c, "offset", 0),
	}
	if q.Status != "" && model.NormalizeStatus(q.Status) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rows, total, err := h.Publishers.List(ctx, q)
	if err != nil {
		c.Logger().Errorf("list publishers: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	cache := map[string]string{}
	out := make([]requestResp, 0, len(rows))
	for _, pr := range rows {
		out = append(out, toRequestResp(ctx, h.Offers, cache, pr))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"publishers": out,
		"total":      total,
		"limit":      q.Limit,
		"offset":     q.Offset,
	})
}

// Get returns one publisher record.
func (h *PublisherHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pr, err := h.Publishers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "publisher not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	cache := map[string]string{}
	return c.JSON(http.StatusOK, echo.Map{"publisher": toRequestResp(ctx, h.Offers, cache, pr)})
}

// Create inserts a publisher record entered by staff.  The row starts
// pending like a public submission so it flows through the same review.
func (h *PublisherHandler) Create(c echo.Context) error {
	var req publisherReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if missing := req.normalize(); len(missing) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": missing})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pr := model.PublisherRequest{
		PublisherName: req.PublisherName,
		Email:         req.Email,
		CompanyName:   req.CompanyName,
		TelegramID:    req.TelegramID,
		OfferID:       req.OfferID,
		CreativeType:  req.CreativeType,
		Priority:      req.Priority,
	}
	id, err := h.Publishers.Create(ctx, pr)
	if err != nil {
		c.Logger().Errorf("create publisher: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "status": model.StatusPending})
}

// Update replaces the editable submission fields of a publisher record.
// Status changes are not accepted here; decisions go through the dashboard
// approve/reject endpoints.
func (h *PublisherHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req publisherReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if missing := req.normalize(); len(missing) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": missing})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pr, err := h.Publishers.Update(ctx, id, repository.RequestUpdate{
		PublisherName: req.PublisherName,
		Email:         req.Email,
		CompanyName:   req.CompanyName,
		TelegramID:    req.TelegramID,
		OfferID:       req.OfferID,
		CreativeType:  req.CreativeType,
		Priority:      req.Priority,
		AdminNotes:    req.AdminNotes,
		ClientNotes:   req.ClientNotes,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "publisher not found"})
		}
		c.Logger().Errorf("update publisher %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	cache := map[string]string{}
	return c.JSON(http.StatusOK, echo.Map{"publisher": toRequestResp(ctx, h.Offers, cache, pr)})
}

// Delete removes a publisher record.
func (h *PublisherHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Publishers.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "publisher not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
