package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bigdrops/admin-portal/internal/model"
	"github.com/bigdrops/admin-portal/internal/repository"
)

type mockAdminUserStore struct {
	createFunc     func(ctx context.Context, email, password, firstName, lastName, role string, cost int) (int64, error)
	listFunc       func(ctx context.Context, limit, offset int) ([]model.User, error)
	updateFunc     func(ctx context.Context, id int64, firstName, lastName, role string, isActive bool) error
	getFunc        func(ctx context.Context, id int64) (model.User, error)
	deactivateFunc func(ctx context.Context, id int64) error
}

func (m *mockAdminUserStore) Create(ctx context.Context, email, password, firstName, lastName, role string, cost int) (int64, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, email, password, firstName, lastName, role, cost)
	}
	return 0, errors.New("not implemented")
}

func (m *mockAdminUserStore) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAdminUserStore) Update(ctx context.Context, id int64, firstName, lastName, role string, isActive bool) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, firstName, lastName, role, isActive)
	}
	return errors.New("not implemented")
}

func (m *mockAdminUserStore) GetByID(ctx context.Context, id int64) (model.User, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return model.User{}, errors.New("not implemented")
}

func (m *mockAdminUserStore) Deactivate(ctx context.Context, id int64) error {
	if m.deactivateFunc != nil {
		return m.deactivateFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func TestUserAdminCreate(t *testing.T) {
	var gotRole string
	store := &mockAdminUserStore{
		createFunc: func(ctx context.Context, email, password, firstName, lastName, role string, cost int) (int64, error) {
			gotRole = role
			return 21, nil
		},
	}
	h := NewUserAdminHandler(testConfig(), store)
	e := echo.New()
	c, rec := newContext(e, http.MethodPost, "/api/users",
		`{"email":"new@example.com","password":"longenough","first_name":"New","last_name":"Staff","role":"editor"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if gotRole != model.RoleEditor {
		t.Errorf("role = %q, want editor", gotRole)
	}
}

func TestUserAdminCreateValidation(t *testing.T) {
	h := NewUserAdminHandler(testConfig(), &mockAdminUserStore{})
	e := echo.New()

	cases := []struct {
		name string
		body string
	}{
		{"short password", `{"email":"a@b.c","password":"short","role":"user"}`},
		{"bad email", `{"email":"nope","password":"longenough","role":"user"}`},
		{"unknown role", `{"email":"a@b.c","password":"longenough","role":"overlord"}`},
	}
	for _, tc := range cases {
		c, rec := newContext(e, http.MethodPost, "/api/users", tc.body)
		if err := h.Create(c); err != nil {
			t.Fatalf("%s: Create: %v", tc.name, err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, rec.Code)
		}
	}
}

func TestUserAdminCreateDuplicateEmail(t *testing.T) {
	store := &mockAdminUserStore{
		createFunc: func(ctx context.Context, email, password, firstName, lastName, role string, cost int) (int64, error) {
			return 0, repository.ErrEmailExists
		},
	}
	h := NewUserAdminHandler(testConfig(), store)
	e := echo.New()
	c, rec := newContext(e, http.MethodPost, "/api/users",
		`{"email":"dup@example.com","password":"longenough","role":"user"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestUserAdminUpdatePartial(t *testing.T) {
	existing := model.User{ID: 3, Email: "e@example.com", FirstName: "Old", LastName: "Name", Role: model.RoleUser, IsActive: true}
	var updated struct {
		first, last, role string
		active            bool
	}
	store := &mockAdminUserStore{
		getFunc: func(ctx context.Context, id int64) (model.User, error) { return existing, nil },
		updateFunc: func(ctx context.Context, id int64, firstName, lastName, role string, isActive bool) error {
			updated.first, updated.last, updated.role, updated.active = firstName, lastName, role, isActive
			return nil
		},
	}
	h := NewUserAdminHandler(testConfig(), store)
	e := echo.New()
	// only the role changes; everything else keeps its stored value
	c, rec := newContext(e, http.MethodPut, "/api/users/3", `{"role":"manager"}`)
	c.SetParamNames("id")
	c.SetParamValues("3")
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if updated.role != model.RoleManager || updated.first != "Old" || updated.last != "Name" || !updated.active {
		t.Errorf("update args = %+v", updated)
	}
}

func TestUserAdminDeleteDeactivates(t *testing.T) {
	var deactivated int64
	store := &mockAdminUserStore{
		deactivateFunc: func(ctx context.Context, id int64) error {
			deactivated = id
			return nil
		},
	}
	h := NewUserAdminHandler(testConfig(), store)
	e := echo.New()
	c, rec := newContext(e, http.MethodDelete, "/api/users/6", "")
	c.SetParamNames("id")
	c.SetParamValues("6")
	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if deactivated != 6 {
		t.Errorf("deactivated id = %d, want 6", deactivated)
	}
}

func TestUserAdminList(t *testing.T) {
	store := &mockAdminUserStore{
		listFunc: func(ctx context.Context, limit, offset int) ([]model.User, error) {
			return []model.User{{ID: 1, Email: "a@example.com", Role: model.RoleAdmin, IsActive: true}}, nil
		},
	}
	h := NewUserAdminHandler(testConfig(), store)
	e := echo.New()
	c, rec := newContext(e, http.MethodGet, "/api/users", "")
	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Users []adminUserResp `json:"users"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Users) != 1 || body.Users[0].Email != "a@example.com" {
		t.Errorf("users = %+v", body.Users)
	}
}
