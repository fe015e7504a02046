package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/scribeworks/notes-service/internal/application"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ListUsers(r.Context(), pageFromQuery(r))
	if err != nil {
		writeMappedError(r.Context(), w, "list_users", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req application.CreateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_user", err)
		return
	}
	res, err := h.service.CreateUser(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_user", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUIDParam(r, "user_id")
	if err != nil {
		writeValidationError(r.Context(), w, "get_user", err)
		return
	}
	res, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		writeMappedError(r.Context(), w, "get_user", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUIDParam(r, "user_id")
	if err != nil {
		writeValidationError(r.Context(), w, "update_user", err)
		return
	}
	var req application.UpdateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "update_user", err)
		return
	}
	res, err := h.service.UpdateUser(r.Context(), userID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "update_user", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUIDParam(r, "user_id")
	if err != nil {
		writeValidationError(r.Context(), w, "delete_user", err)
		return
	}
	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		writeMappedError(r.Context(), w, "delete_user", err)
		return
	}
	writeMessage(w, http.StatusOK, "User deleted")
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFromContext(r.Context())
	if !ok {
		writeMissingAuthError(r.Context(), w, "get_profile")
		return
	}
	userID, err := parseUUIDParam(r, "user_id")
	if err != nil {
		writeValidationError(r.Context(), w, "get_profile", err)
		return
	}
	res, err := h.service.GetProfile(r.Context(), auth, userID)
	if err != nil {
		writeMappedError(r.Context(), w, "get_profile", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFromContext(r.Context())
	if !ok {
		writeMissingAuthError(r.Context(), w, "update_profile")
		return
	}
	userID, err := parseUUIDParam(r, "user_id")
	if err != nil {
		writeValidationError(r.Context(), w, "update_profile", err)
		return
	}
	var req application.ProfileInput
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "update_profile", err)
		return
	}
	res, err := h.service.UpdateProfile(r.Context(), auth, userID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "update_profile", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFromContext(r.Context())
	if !ok {
		writeMissingAuthError(r.Context(), w, "change_password")
		return
	}
	userID, err := parseUUIDParam(r, "user_id")
	if err != nil {
		writeValidationError(r.Context(), w, "change_password", err)
		return
	}
	var req application.ChangePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "change_password", err)
		return
	}
	if err := h.service.ChangePassword(r.Context(), auth, userID, req); err != nil {
		writeMappedError(r.Context(), w, "change_password", err)
		return
	}
	// All refresh sessions are gone; the client must log in again.
	h.clearRefreshCookie(w)
	writeMessage(w, http.StatusOK, "Password changed")
}

func (h *Handler) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFromContext(r.Context())
	if !ok {
		writeMissingAuthError(r.Context(), w, "upload_avatar")
		return
	}
	userID, err := parseUUIDParam(r, "user_id")
	if err != nil {
		writeValidationError(r.Context(), w, "upload_avatar", err)
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeValidationError(r.Context(), w, "upload_avatar", err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := h.service.UploadAvatar(r.Context(), auth, userID, contentType, header.Size, file); err != nil {
		writeMappedError(r.Context(), w, "upload_avatar", err)
		return
	}
	writeMessage(w, http.StatusOK, "Avatar updated")
}

func (h *Handler) getAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUIDParam(r, "user_id")
	if err != nil {
		writeValidationError(r.Context(), w, "get_avatar", err)
		return
	}
	obj, err := h.service.GetAvatar(r.Context(), userID)
	if err != nil {
		writeMappedError(r.Context(), w, "get_avatar", err)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, obj.Body)
}
