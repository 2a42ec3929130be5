package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bigdrops/admin-portal/internal/everflow"
	"github.com/bigdrops/admin-portal/internal/model"
	"github.com/bigdrops/admin-portal/internal/repository"
)

type mockAdvertiserStore struct {
	createFunc func(ctx context.Context, a model.Advertiser) (int64, error)
	getFunc    func(ctx context.Context, id int64) (model.Advertiser, error)
	listFunc   func(ctx context.Context, limit, offset int) ([]model.Advertiser, error)
	updateFunc func(ctx context.Context, id int64, name, company, email, website, status string) (model.Advertiser, error)
	deleteFunc func(ctx context.Context, id int64) error
}

func (m *mockAdvertiserStore) Create(ctx context.Context, a model.Advertiser) (int64, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, a)
	}
	return 0, errors.New("not implemented")
}

func (m *mockAdvertiserStore) GetByID(ctx context.Context, id int64) (model.Advertiser, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return model.Advertiser{}, errors.New("not implemented")
}

func (m *mockAdvertiserStore) List(ctx context.Context, limit, offset int) ([]model.Advertiser, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAdvertiserStore) Update(ctx context.Context, id int64, name, company, email, website, status string) (model.Advertiser, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, name, company, email, website, status)
	}
	return model.Advertiser{}, errors.New("not implemented")
}

func (m *mockAdvertiserStore) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return errors.New("not implemented")
}

type mockAdvertiserFinder struct {
	findFunc func(ctx context.Context, externalID string) (everflow.Advertiser, bool, error)
}

func (m *mockAdvertiserFinder) FindAdvertiser(ctx context.Context, externalID string) (everflow.Advertiser, bool, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, externalID)
	}
	return everflow.Advertiser{}, false, errors.New("not implemented")
}

func TestAdvertiserCreateManual(t *testing.T) {
	var inserted model.Advertiser
	store := &mockAdvertiserStore{
		createFunc: func(ctx context.Context, a model.Advertiser) (int64, error) {
			inserted = a
			return 31, nil
		},
	}
	h := NewAdvertiserHandler(store, nil, &mockAuditStore{})

	e := echo.New()
	c, rec := newContext(e, http.MethodPost, "/api/advertisers", `{"name":"Acme","company":"Acme Inc","email":"ads@acme.test"}`)
	c.Set("user_id", int64(4))
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if inserted.CreatedVia != model.CreatedManual {
		t.Errorf("created_via = %q, want manual", inserted.CreatedVia)
	}
	if inserted.Status != model.AdvertiserActive {
		t.Errorf("status = %q, want active default", inserted.Status)
	}
	if inserted.CreatedBy == nil || *inserted.CreatedBy != 4 {
		t.Errorf("created_by = %v", inserted.CreatedBy)
	}
}

func TestAdvertiserCreateValidation(t *testing.T) {
	h := NewAdvertiserHandler(&mockAdvertiserStore{}, nil, &mockAuditStore{})
	e := echo.New()
	c, rec := newContext(e, http.MethodPost, "/api/advertisers", `{"name":"  "}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAdvertiserUpdateNotFound(t *testing.T) {
	store := &mockAdvertiserStore{
		updateFunc: func(ctx context.Context, id int64, name, company, email, website, status string) (model.Advertiser, error) {
			return model.Advertiser{}, repository.ErrNotFound
		},
	}
	h := NewAdvertiserHandler(store, nil, &mockAuditStore{})
	e := echo.New()
	c, rec := newContext(e, http.MethodPut, "/api/advertisers/9", `{"name":"New Name"}`)
	c.SetParamNames("id")
	c.SetParamValues("9")
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAdvertiserPull(t *testing.T) {
	finder := &mockAdvertiserFinder{
		findFunc: func(ctx context.Context, externalID string) (everflow.Advertiser, bool, error) {
			if externalID != "101" {
				return everflow.Advertiser{}, false, nil
			}
			return everflow.Advertiser{NetworkAdvertiserID: 101, Name: "Acme"}, true, nil
		},
	}
	var inserted model.Advertiser
	store := &mockAdvertiserStore{
		createFunc: func(ctx context.Context, a model.Advertiser) (int64, error) {
			inserted = a
			return 55, nil
		},
	}
	var auditAction string
	audit := &mockAuditStore{
		appendFunc: func(ctx context.Context, actorID int64, action, entityType string, entityID int64, metadata map[string]any) error {
			auditAction = action
			return nil
		},
	}
	h := NewAdvertiserHandler(store, finder, audit)

	e := echo.New()
	c, rec := newContext(e, http.MethodPost, "/api/advertisers/pull", `{"advertiser_id":"101"}`)
	c.Set("user_id", int64(2))
	if err := h.Pull(c); err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if inserted.CreatedVia != model.CreatedViaAPI {
		t.Errorf("created_via = %q, want api", inserted.CreatedVia)
	}
	if inserted.ExternalID == nil || *inserted.ExternalID != "101" {
		t.Errorf("external_id = %v", inserted.ExternalID)
	}
	if inserted.Platform != "everflow" {
		t.Errorf("platform = %q", inserted.Platform)
	}
	if auditAction != "advertiser.pull" {
		t.Errorf("audit action = %q", auditAction)
	}
}

func TestAdvertiserPullNotFoundOnPlatform(t *testing.T) {
	finder := &mockAdvertiserFinder{
		findFunc: func(ctx context.Context, externalID string) (everflow.Advertiser, bool, error) {
			return everflow.Advertiser{}, false, nil
		},
	}
	h := NewAdvertiserHandler(&mockAdvertiserStore{}, finder, &mockAuditStore{})
	e := echo.New()
	c, rec := newContext(e, http.MethodPost, "/api/advertisers/pull", `{"advertiser_id":"404"}`)
	c.Set("user_id", int64(2))
	if err := h.Pull(c); err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAdvertiserPullDuplicate(t *testing.T) {
	finder := &mockAdvertiserFinder{
		findFunc: func(ctx context.Context, externalID string) (everflow.Advertiser, bool, error) {
			return everflow.Advertiser{NetworkAdvertiserID: 101, Name: "Acme"}, true, nil
		},
	}
	store := &mockAdvertiserStore{
		createFunc: func(ctx context.Context, a model.Advertiser) (int64, error) {
			return 0, repository.ErrDuplicate
		},
	}
	h := NewAdvertiserHandler(store, finder, &mockAuditStore{})
	e := echo.New()
	c, rec := newContext(e, http.MethodPost, "/api/advertisers/pull", `{"advertiser_id":"101"}`)
	c.Set("user_id", int64(2))
	if err := h.Pull(c); err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestAdvertiserPullPlatformDown(t *testing.T) {
	finder := &mockAdvertiserFinder{
		findFunc: func(ctx context.Context, externalID string) (everflow.Advertiser, bool, error) {
			return everflow.Advertiser{}, false, errors.New("timeout")
		},
	}
	h := NewAdvertiserHandler(&mockAdvertiserStore{}, finder, &mockAuditStore{})
	e := echo.New()
	c, rec := newContext(e, http.MethodPost, "/api/advertisers/pull", `{"advertiser_id":"101"}`)
	c.Set("user_id", int64(2))
	if err := h.Pull(c); err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestAdvertiserPullNoPlatformConfigured(t *testing.T) {
	h := NewAdvertiserHandler(&mockAdvertiserStore{}, nil, &mockAuditStore{})
	e := echo.New()
	c, rec := newContext(e, http.MethodPost, "/api/advertisers/pull", `{"advertiser_id":"101"}`)
	c.Set("user_id", int64(2))
	if err := h.Pull(c); err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestAdvertiserDelete(t *testing.T) {
	store := &mockAdvertiserStore{
		deleteFunc: func(ctx context.Context, id int64) error {
			if id != 7 {
				t.Errorf("delete id = %d, want 7", id)
			}
			return nil
		},
	}
	h := NewAdvertiserHandler(store, nil, &mockAuditStore{})
	e := echo.New()
	c, rec := newContext(e, http.MethodDelete, "/api/advertisers/7", "")
	c.SetParamNames("id")
	c.SetParamValues("7")
	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}
