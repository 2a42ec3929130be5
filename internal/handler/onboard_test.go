package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bigdrops/admin-portal/internal/model"
)

type mockRequestCreator struct {
	createFunc func(ctx context.Context, pr model.PublisherRequest) (int64, error)
}

func (m *mockRequestCreator) Create(ctx context.Context, pr model.PublisherRequest) (int64, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, pr)
	}
	return 0, errors.New("not implemented")
}

const formBody = `{"publisherName":"Traffic Kings","companyName":"Traffic Kings LLC","email":"pub@example.com","offerId":1234,"creativeType":"banner","telegramId":"@kings","extra":"kept"}`

func TestOnboardCreatesPendingRequest(t *testing.T) {
	var inserted model.PublisherRequest
	store := &mockRequestCreator{
		createFunc: func(ctx context.Context, pr model.PublisherRequest) (int64, error) {
			inserted = pr
			return 77, nil
		},
	}
	h := NewOnboardHandler(store, "tok")

	e := echo.New()
	c, rec := newContext(e, http.MethodPost, "/api/publishers/onboard", formBody)
	if err := h.Onboard(c); err != nil {
		t.Fatalf("Onboard: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if inserted.Status != model.StatusPending {
		t.Errorf("status = %q, want pending", inserted.Status)
	}
	if inserted.Priority != model.PriorityMedium {
		t.Errorf("priority = %q, want medium default", inserted.Priority)
	}
	if inserted.OfferID != "1234" {
		t.Errorf("offer id = %q", inserted.OfferID)
	}
	if inserted.TelegramID == nil || *inserted.TelegramID != "@kings" {
		t.Errorf("telegram id = %v", inserted.TelegramID)
	}
	// the raw payload survives verbatim, unknown keys included
	if string(inserted.SubmittedData) != formBody {
		t.Errorf("submitted_data = %s", inserted.SubmittedData)
	}

	var body struct {
		Request struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"request"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Request.ID != 77 || body.Request.Status != model.StatusPending {
		t.Errorf("response request = %+v", body.Request)
	}
}

func TestOnboardSplitNameFallback(t *testing.T) {
	var inserted model.PublisherRequest
	store := &mockRequestCreator{
		createFunc: func(ctx context.Context, pr model.PublisherRequest) (int64, error) {
			inserted = pr
			return 1, nil
		},
	}
	h := NewOnboardHandler(store, "tok")

	e := echo.New()
	c, rec := newContext(e, http.MethodPost, "/api/publishers/onboard",
		`{"firstName":"Jo","lastName":"Reyes","companyName":"JR Media","email":"jo@example.com","offerId":"9","creativeType":"push"}`)
	if err := h.Onboard(c); err != nil {
		t.Fatalf("Onboard: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if inserted.PublisherName != "Jo Reyes" {
		t.Errorf("publisher name = %q, want Jo Reyes", inserted.PublisherName)
	}
}

func TestOnboardValidation(t *testing.T) {
	h := NewOnboardHandler(&mockRequestCreator{}, "tok")
	e := echo.New()
	c, rec := newContext(e, http.MethodPost, "/api/publishers/onboard", `{"email":"not-an-email"}`)
	if err := h.Onboard(c); err != nil {
		t.Fatalf("Onboard: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body struct {
		Error  string   `json:"error"`
		Fields []string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "validation failed" {
		t.Errorf("error = %q", body.Error)
	}
	want := map[string]bool{"publisherName": true, "companyName": true, "email": true, "offerId": true, "creativeType": true}
	for _, f := range body.Fields {
		if !want[f] {
			t.Errorf("unexpected field %q", f)
		}
		delete(want, f)
	}
	for f := range want {
		t.Errorf("missing field %q", f)
	}
}

const webhookBody = `{"affiliateId":"A-9","firstName":"Jo","lastName":"Reyes","companyName":"JR Media","email":"jo@example.com","offerId":"9","creativeType":"push","priority":"high"}`

func TestWebhookAuth(t *testing.T) {
	h := NewOnboardHandler(&mockRequestCreator{
		createFunc: func(ctx context.Context, pr model.PublisherRequest) (int64, error) { return 5, nil },
	}, "secret-token")
	e := echo.New()

	cases := []struct {
		name string
		auth string
		want int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic secret-token", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer secret-token", http.StatusCreated},
	}
	for _, tc := range cases {
		c, rec := newContext(e, http.MethodPost, "/api/webhooks/secure", webhookBody)
		if tc.auth != "" {
			c.Request().Header.Set("Authorization", tc.auth)
		}
		if err := h.Webhook(c); err != nil {
			t.Fatalf("%s: Webhook: %v", tc.name, err)
		}
		if rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
	}
}

func TestWebhookEmptyConfiguredTokenAlwaysRejects(t *testing.T) {
	h := NewOnboardHandler(&mockRequestCreator{}, "")
	e := echo.New()
	c, rec := newContext(e, http.MethodPost, "/api/webhooks/secure", webhookBody)
	c.Request().Header.Set("Authorization", "Bearer ")
	if err := h.Webhook(c); err != nil {
		t.Fatalf("Webhook: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 with no configured token", rec.Code)
	}
}

func TestWebhookValidationRequiresSplitName(t *testing.T) {
	h := NewOnboardHandler(&mockRequestCreator{}, "secret-token")
	e := echo.New()
	c, rec := newContext(e, http.MethodPost, "/api/webhooks/secure",
		`{"publisherName":"Combined Only","companyName":"C","email":"c@example.com","offerId":1,"creativeType":"banner","priority":"low"}`)
	c.Request().Header.Set("Authorization", "Bearer secret-token")
	if err := h.Webhook(c); err != nil {
		t.Fatalf("Webhook: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body struct {
		Fields []string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := map[string]bool{}
	for _, f := range body.Fields {
		got[f] = true
	}
	for _, f := range []string{"affiliateId", "firstName", "lastName"} {
		if !got[f] {
			t.Errorf("missing required field %q in %v", f, body.Fields)
		}
	}
}

func TestWebhookReturnsReceiptID(t *testing.T) {
	h := NewOnboardHandler(&mockRequestCreator{
		createFunc: func(ctx context.Context, pr model.PublisherRequest) (int64, error) { return 8, nil },
	}, "secret-token")
	e := echo.New()
	c, rec := newContext(e, http.MethodPost, "/api/webhooks/secure", webhookBody)
	c.Request().Header.Set("Authorization", "Bearer secret-token")
	if err := h.Webhook(c); err != nil {
		t.Fatalf("Webhook: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var body struct {
		ReceiptID string `json:"receipt_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.ReceiptID) != 36 {
		t.Errorf("receipt_id = %q, want a uuid", body.ReceiptID)
	}
}
