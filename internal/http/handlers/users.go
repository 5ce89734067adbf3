package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	apierrors "github.com/pribylovaa/go-webapp-starter/internal/errors"
	"github.com/pribylovaa/go-webapp-starter/internal/http/middleware"
	"github.com/pribylovaa/go-webapp-starter/internal/models"
	"github.com/pribylovaa/go-webapp-starter/internal/service"
)

type createUserRequest struct {
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

type updateUserRequest struct {
	Email    *string      `json:"email"`
	Name     *string      `json:"name"`
	Password *string      `json:"password"`
	Role     *models.Role `json:"role"`
}

type usersResponse struct {
	Users []models.User `json:"users"`
}

// ListUsers — GET /api/users (только admin, роль проверяет RequireRole).
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, usersResponse{Users: users})
}

// CreateUser — POST /api/users (только admin).
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in createUserRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, badRequest())
		return
	}

	user, err := h.Service.CreateUser(r.Context(), service.CreateUserInput{
		Email:    in.Email,
		Name:     in.Name,
		Password: in.Password,
		Role:     in.Role,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// UserByID — GET /api/users/{id}: свой профиль или admin.
func (h *Handlers) UserByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, badRequest())
		return
	}

	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, apierrors.ErrUnauthenticated)
		return
	}

	if identity.UserID != id && !identity.IsAdmin() {
		apierrors.WriteError(w, r, apierrors.ErrPermissionDenied)
		return
	}

	user, err := h.Service.UserByID(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateUser — PUT /api/users/{id} (только admin, частичное обновление).
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, badRequest())
		return
	}

	var in updateUserRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, badRequest())
		return
	}

	user, err := h.Service.UpdateUser(r.Context(), id, service.UpdateUserInput{
		Email:    in.Email,
		Name:     in.Name,
		Password: in.Password,
		Role:     in.Role,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// DeleteUser — DELETE /api/users/{id} (только admin).
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, badRequest())
		return
	}

	if err := h.Service.DeleteUser(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}
