package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-user-service/internal/middleware"
	"go-user-service/internal/model"
	"go-user-service/internal/service"
	"go-user-service/pkg/apierror"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Get resolves users from "?id={id}" or "?name={name}".
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	users, err := h.users.GetByIDOrName(r.Context(), query.Get("id"), query.Get("name"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "User found", users)
}

func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	users, total, err := h.users.Search(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccessCount(w, http.StatusOK, searchMessage(total), total, users)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	userID := chi.URLParam(r, "id")
	if userID == "" {
		writeError(w, apierror.BadRequest("user id is required"))
		return
	}

	var payload model.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	user, err := h.users.Update(r.Context(), userID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK,
		fmt.Sprintf("User `%s` with id `%s` updated successfully", user.Name, user.ID), user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		writeError(w, apierror.BadRequest("user id is required"))
		return
	}

	user, err := h.users.Delete(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK,
		fmt.Sprintf("User `%s` with id `%s` deleted successfully", user.Name, user.ID), user)
}

// ChangePassword lets the authenticated user rotate their own
// password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	userID := chi.URLParam(r, "id")
	if userID == "" {
		writeError(w, apierror.BadRequest("user id is required"))
		return
	}
	if userID != identity.UserID {
		writeError(w, apierror.New("FORBIDDEN", "cannot change another user's password", "", http.StatusForbidden))
		return
	}

	var payload model.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	if err := h.users.ChangePassword(r.Context(), userID, payload.CurrentPassword, payload.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Password updated", nil)
}

func searchMessage(count int64) string {
	switch count {
	case 0:
		return "No users found"
	case 1:
		return "1 user found"
	default:
		return fmt.Sprintf("%d users found", count)
	}
}
