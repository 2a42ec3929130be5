package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bigdrops/admin-portal/internal/model"
)

// RequestCreator inserts new publisher requests.
type RequestCreator interface {
	Create(ctx context.Context, pr model.PublisherRequest) (int64, error)
}

// OnboardHandler ingests publisher submissions from the public onboarding
// form and from the authenticated webhook.  Both paths preserve the raw
// submission payload verbatim in submitted_data.
type OnboardHandler struct {
	Requests RequestCreator
	// WebhookToken is the static bearer token required on the webhook path.
	WebhookToken string
}

func NewOnboardHandler(r RequestCreator, webhookToken string) *OnboardHandler {
	return &OnboardHandler{Requests: r, WebhookToken: webhookToken}
}

// submission is the superset of fields accepted by both ingestion paths.
type submission struct {
	AffiliateID     string          `json:"affiliateId"`
	PublisherName   string          `json:"publisherName"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	CompanyName     string          `json:"companyName"`
	Email           string          `json:"email"`
	TelegramID      string          `json:"telegramId"`
	OfferID         json.Number     `json:"offerId"`
	CreativeType    string          `json:"creativeType"`
	Priority        string          `json:"priority"`
	AdditionalNotes string          `json:"additionalNotes"`
	UploadedFiles   json.RawMessage `json:"uploadedFiles"`
}

// name returns the display name: explicit publisherName, else first+last.
func (s submission) name() string {
	if n := strings.TrimSpace(s.PublisherName); n != "" {
		return n
	}
	return strings.TrimSpace(strings.TrimSpace(s.FirstName) + " " + strings.TrimSpace(s.LastName))
}

// readSubmission decodes the request body while keeping the raw bytes.
func readSubmission(c echo.Context) (submission, []byte, error) {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return submission{}, nil, err
	}
	var s submission
	if err := json.Unmarshal(raw, &s); err != nil {
		return submission{}, nil, err
	}
	return s, raw, nil
}

// validate collects missing required fields.  The webhook contract requires
// the split name and affiliate id; the public form accepts a combined name.
func (s submission) validate(webhook bool) []string {
	var missing []string
	if webhook {
		if strings.TrimSpace(s.AffiliateID) == "" {
			missing = append(missing, "affiliateId")
		}
		if strings.TrimSpace(s.FirstName) == "" {
			missing = append(missing, "firstName")
		}
		if strings.TrimSpace(s.LastName) == "" {
			missing = append(missing, "lastName")
		}
		if s.Priority == "" {
			missing = append(missing, "priority")
		}
	} else if s.name() == "" {
		missing = append(missing, "publisherName")
	}
	if strings.TrimSpace(s.CompanyName) == "" {
		missing = append(missing, "companyName")
	}
	if strings.TrimSpace(s.Email) == "" || !strings.Contains(s.Email, "@") {
		missing = append(missing, "email")
	}
	if s.OfferID.String() == "" {
		missing = append(missing, "offerId")
	}
	if strings.TrimSpace(s.CreativeType) == "" {
		missing = append(missing, "creativeType")
	}
	if s.Priority != "" && !model.ValidPriority(s.Priority) {
		missing = append(missing, "priority")
	}
	return missing
}

// insert builds the pending row and stores it with the verbatim payload.
func (h *OnboardHandler) insert(c echo.Context, s submission, raw []byte) (int64, model.PublisherRequest, error) {
	priority := s.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	pr := model.PublisherRequest{
		PublisherName: s.name(),
		Email:         strings.ToLower(strings.TrimSpace(s.Email)),
		CompanyName:   strings.TrimSpace(s.CompanyName),
		OfferID:       s.OfferID.String(),
		CreativeType:  strings.TrimSpace(s.CreativeType),
		Priority:      priority,
		Status:        model.StatusPending,
		SubmittedData: json.RawMessage(raw),
	}
	if tg := strings.TrimSpace(s.TelegramID); tg != "" {
		pr.TelegramID = &tg
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Requests.Create(ctx, pr)
	pr.ID = id
	return id, pr, err
}

// Onboard handles the public onboarding form submission.  The route is rate
// limited upstream.
func (h *OnboardHandler) Onboard(c echo.Context) error {
	s, raw, err := readSubmission(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if missing := s.validate(false); len(missing) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": missing})
	}

	id, pr, err := h.insert(c, s, raw)
	if err != nil {
		c.Logger().Errorf("onboard insert: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create request failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"request": echo.Map{
			"id":             id,
			"status":         pr.Status,
			"publisher_name": pr.PublisherName,
			"offer_id":       pr.OfferID,
		},
	})
}

// Webhook handles the authenticated inbound submission.  The bearer token is
// compared in constant time against the configured static token; nothing
// about the token is revealed on mismatch.
func (h *OnboardHandler) Webhook(c echo.Context) error {
	auth := c.Request().Header.Get("Authorization")
	presented := strings.TrimPrefix(auth, "Bearer ")
	if !strings.HasPrefix(auth, "Bearer ") || h.WebhookToken == "" ||
		subtle.ConstantTimeCompare([]byte(presented), []byte(h.WebhookToken)) != 1 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	s, raw, err := readSubmission(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if missing := s.validate(true); len(missing) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": missing})
	}

	id, pr, err := h.insert(c, s, raw)
	if err != nil {
		c.Logger().Errorf("webhook insert: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create request failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"receipt_id": uuid.NewString(),
		"request": echo.Map{
			"id":     id,
			"status": pr.Status,
		},
	})
}
