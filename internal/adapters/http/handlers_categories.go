package http

import (
	"net/http"
)

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "list_categories", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_category", err)
		return
	}
	res, err := h.service.CreateCategory(r.Context(), req.Name)
	if err != nil {
		writeMappedError(r.Context(), w, "create_category", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) renameCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseUUIDParam(r, "category_id")
	if err != nil {
		writeValidationError(r.Context(), w, "rename_category", err)
		return
	}
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "rename_category", err)
		return
	}
	res, err := h.service.RenameCategory(r.Context(), categoryID, req.Name)
	if err != nil {
		writeMappedError(r.Context(), w, "rename_category", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseUUIDParam(r, "category_id")
	if err != nil {
		writeValidationError(r.Context(), w, "delete_category", err)
		return
	}
	if err := h.service.DeleteCategory(r.Context(), categoryID); err != nil {
		writeMappedError(r.Context(), w, "delete_category", err)
		return
	}
	writeMessage(w, http.StatusOK, "Category deleted")
}
