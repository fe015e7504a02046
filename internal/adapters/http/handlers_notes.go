package http

import (
	"net/http"
	"strings"

	"github.com/scribeworks/notes-service/internal/application"
)

func (h *Handler) listNotes(w http.ResponseWriter, r *http.Request) {
	sortNewest := !strings.EqualFold(r.URL.Query().Get("sort"), "oldest")
	res, err := h.service.ListNotes(r.Context(), pageFromQuery(r), sortNewest)
	if err != nil {
		writeMappedError(r.Context(), w, "list_notes", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) listNotesByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseUUIDParam(r, "category_id")
	if err != nil {
		writeValidationError(r.Context(), w, "list_notes_by_category", err)
		return
	}
	res, err := h.service.ListNotesByCategory(r.Context(), categoryID, pageFromQuery(r))
	if err != nil {
		writeMappedError(r.Context(), w, "list_notes_by_category", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) getNote(w http.ResponseWriter, r *http.Request) {
	noteID, err := parseUUIDParam(r, "note_id")
	if err != nil {
		writeValidationError(r.Context(), w, "get_note", err)
		return
	}
	res, err := h.service.GetNote(r.Context(), noteID)
	if err != nil {
		writeMappedError(r.Context(), w, "get_note", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) createNote(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFromContext(r.Context())
	if !ok {
		writeMissingAuthError(r.Context(), w, "create_note")
		return
	}
	var req application.CreateNoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_note", err)
		return
	}
	res, err := h.service.CreateNote(r.Context(), auth, req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_note", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) updateNote(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFromContext(r.Context())
	if !ok {
		writeMissingAuthError(r.Context(), w, "update_note")
		return
	}
	noteID, err := parseUUIDParam(r, "note_id")
	if err != nil {
		writeValidationError(r.Context(), w, "update_note", err)
		return
	}
	var req application.UpdateNoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "update_note", err)
		return
	}
	res, err := h.service.UpdateNote(r.Context(), auth, noteID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "update_note", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) deleteNote(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFromContext(r.Context())
	if !ok {
		writeMissingAuthError(r.Context(), w, "delete_note")
		return
	}
	noteID, err := parseUUIDParam(r, "note_id")
	if err != nil {
		writeValidationError(r.Context(), w, "delete_note", err)
		return
	}
	if err := h.service.DeleteNote(r.Context(), auth, noteID); err != nil {
		writeMappedError(r.Context(), w, "delete_note", err)
		return
	}
	writeMessage(w, http.StatusOK, "Note deleted")
}
