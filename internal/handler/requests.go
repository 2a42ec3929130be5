package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bigdrops/admin-portal/internal/everflow"
	"github.com/bigdrops/admin-portal/internal/model"
	"github.com/bigdrops/admin-portal/internal/queue"
	"github.com/bigdrops/admin-portal/internal/repository"
)

// RequestStore is the slice of the request repository the dashboard needs.
type RequestStore interface {
	GetByID(ctx context.Context, id int64) (model.PublisherRequest, error)
	List(ctx context.Context, q repository.RequestQuery) ([]model.PublisherRequest, int64, error)
	Decide(ctx context.Context, id, actorID int64, status, note string) (model.PublisherRequest, error)
}

// AuditStore appends and reads audit-log rows.
type AuditStore interface {
	Append(ctx context.Context, actorID int64, action, entityType string, entityID int64, metadata map[string]any) error
	RecentForEntity(ctx context.Context, entityType string, entityID int64, limit int) ([]repository.AuditRow, error)
}

// OfferNamer resolves external offer ids to display names.  Nil means no
// API key is configured and the deterministic placeholder is used.
type OfferNamer interface {
	OfferName(ctx context.Context, offerID string) (string, error)
}

// DashboardHandler serves the staff-facing request review endpoints.
type DashboardHandler struct {
	Requests RequestStore
	Audit    AuditStore
	Offers   OfferNamer
	// Publish sends the decision audit event; nil disables publishing.
	// Failures are logged and never fail the decision.
	Publish func(ctx context.Context, ev queue.DecisionAuditEvent) error
}

func NewDashboardHandler(r RequestStore, a AuditStore, offers OfferNamer,
	publish func(context.Context, queue.DecisionAuditEvent) error) *DashboardHandler {
	if r == nil || a == nil {
		panic("nil store passed to NewDashboardHandler")
	}
	return &DashboardHandler{Requests: r, Audit: a, Offers: offers, Publish: publish}
}

// requestResp is the JSON shape of a publisher request, with the offer name
// joined in from the tracking platform (or a placeholder).
type requestResp struct {
	ID            int64           `json:"id"`
	PublisherName string          `json:"publisher_name"`
	Email         string          `json:"email"`
	CompanyName   string          `json:"company_name"`
	TelegramID    *string         `json:"telegram_id,omitempty"`
	OfferID       string          `json:"offer_id"`
	OfferName     string          `json:"offer_name"`
	CreativeType  string          `json:"creative_type"`
	Priority      string          `json:"priority"`
	Status        string          `json:"status"`
	SubmittedData json.RawMessage `json:"submitted_data,omitempty"`
	AdminNotes    *string         `json:"admin_notes,omitempty"`
	ClientNotes   *string         `json:"client_notes,omitempty"`
	ApprovedBy    *int64          `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time      `json:"approved_at,omitempty"`
	RejectedBy    *int64          `json:"rejected_by,omitempty"`
	RejectedAt    *time.Time      `json:"rejected_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// resolveOfferName resolves one offer id, caching lookups for the duration
// of a single list request so N rows with the same offer cost one API call.
// A nil namer or failed lookup falls back to the deterministic placeholder.
func resolveOfferName(ctx context.Context, offers OfferNamer, cache map[string]string, offerID string) string {
	if name, ok := cache[offerID]; ok {
		return name
	}
	name := ""
	if offers != nil {
		if n, err := offers.OfferName(ctx, offerID); err == nil && n != "" {
			name = n
		}
	}
	if name == "" {
		name = everflow.PlaceholderOfferName(offerID)
	}
	cache[offerID] = name
	return name
}

func toRequestResp(ctx context.Context, offers OfferNamer, cache map[string]string, pr model.PublisherRequest) requestResp {
	return requestResp{
		ID:            pr.ID,
		PublisherName: pr.PublisherName,
		Email:         pr.Email,
		CompanyName:   pr.CompanyName,
		TelegramID:    pr.TelegramID,
		OfferID:       pr.OfferID,
		OfferName:     resolveOfferName(ctx, offers, cache, pr.OfferID),
		CreativeType:  pr.CreativeType,
		Priority:      pr.Priority,
		Status:        pr.Status,
		SubmittedData: pr.SubmittedData,
		AdminNotes:    pr.AdminNotes,
		ClientNotes:   pr.ClientNotes,
		ApprovedBy:    pr.ApprovedBy,
		ApprovedAt:    pr.ApprovedAt,
		RejectedBy:    pr.RejectedBy,
		RejectedAt:    pr.RejectedAt,
		CreatedAt:     pr.CreatedAt,
		UpdatedAt:     pr.UpdatedAt,
	}
}

// List returns publisher requests with pagination, search, filters and
// allow-listed sorting.
func (h *DashboardHandler) List(c echo.Context) error {
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
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from date"})
		}
		q.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to date"})
		}
		q.To = &t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	requests, total, err := h.Requests.List(ctx, q)
	if err != nil {
		c.Logger().Errorf("list requests: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	cache := map[string]string{}
	out := make([]requestResp, 0, len(requests))
	for _, pr := range requests {
		out = append(out, toRequestResp(ctx, h.Offers, cache, pr))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"requests": out,
		"total":    total,
		"limit":    q.Limit,
		"offset":   q.Offset,
	})
}

// Detail returns one request with its recent audit history.
func (h *DashboardHandler) Detail(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pr, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	history, err := h.Audit.RecentForEntity(ctx, "publisher_request", id, 20)
	if err != nil {
		c.Logger().Warnf("load audit history: %v", err)
	}

	cache := map[string]string{}
	return c.JSON(http.StatusOK, echo.Map{
		"request": toRequestResp(ctx, h.Offers, cache, pr),
		"history": history,
	})
}

type decideReq struct {
	Notes string `json:"notes"`
}

// Approve transitions a request to approved.
func (h *DashboardHandler) Approve(c echo.Context) error {
	return h.decide(c, model.StatusApproved)
}

// Reject transitions a request to rejected.
func (h *DashboardHandler) Reject(c echo.Context) error {
	return h.decide(c, model.StatusRejected)
}

// decide applies an approve/reject transition.  Deciding an already-decided
// request overwrites the stamp rather than erroring; there is no transition
// back to pending.  The audit row and queue event are best effort.
func (h *DashboardHandler) decide(c echo.Context, status string) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req decideReq
	_ = c.Bind(&req)
	note := strings.TrimSpace(req.Notes)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pr, err := h.Requests.Decide(ctx, id, actorID, status, note)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		c.Logger().Errorf("decide request %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	if err := h.Audit.Append(ctx, actorID, "request."+status, "publisher_request", id,
		map[string]any{"notes": note}); err != nil {
		c.Logger().Warnf("audit append for request %d: %v", id, err)
	}

	if h.Publish != nil {
		ev := queue.DecisionAuditEvent{
			RequestID:     pr.ID,
			PublisherName: pr.PublisherName,
			OfferID:       pr.OfferID,
			Status:        pr.Status,
			ActorID:       actorID,
			Notes:         note,
			DecidedAt:     time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Publish(ctx, ev); err != nil {
			c.Logger().Warnf("publish decision event for request %d: %v", id, err)
		}
	}

	cache := map[string]string{}
	return c.JSON(http.StatusOK, echo.Map{"request": toRequestResp(ctx, h.Offers, cache, pr)})
}
