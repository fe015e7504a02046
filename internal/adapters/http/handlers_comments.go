package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/scribeworks/notes-service/internal/application"
)

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFromContext(r.Context())
	if !ok {
		writeMissingAuthError(r.Context(), w, "list_comments")
		return
	}
	var noteID *uuid.UUID
	if raw := strings.TrimSpace(r.URL.Query().Get("note_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeValidationError(r.Context(), w, "list_comments", err)
			return
		}
		noteID = &id
	}
	res, err := h.service.ListComments(r.Context(), auth, noteID, pageFromQuery(r))
	if err != nil {
		writeMappedError(r.Context(), w, "list_comments", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

// listCommentsByNote is the path-parameter variant of listComments for
// clients that browse one note's thread.
func (h *Handler) listCommentsByNote(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFromContext(r.Context())
	if !ok {
		writeMissingAuthError(r.Context(), w, "list_comments_by_note")
		return
	}
	noteID, err := parseUUIDParam(r, "note_id")
	if err != nil {
		writeValidationError(r.Context(), w, "list_comments_by_note", err)
		return
	}
	res, err := h.service.ListComments(r.Context(), auth, &noteID, pageFromQuery(r))
	if err != nil {
		writeMappedError(r.Context(), w, "list_comments_by_note", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) listReplies(w http.ResponseWriter, r *http.Request) {
	commentID, err := parseUUIDParam(r, "comment_id")
	if err != nil {
		writeValidationError(r.Context(), w, "list_replies", err)
		return
	}
	res, err := h.service.ListReplies(r.Context(), commentID, pageFromQuery(r))
	if err != nil {
		writeMappedError(r.Context(), w, "list_replies", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFromContext(r.Context())
	if !ok {
		writeMissingAuthError(r.Context(), w, "create_comment")
		return
	}
	var req application.CreateCommentRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_comment", err)
		return
	}
	res, err := h.service.CreateComment(r.Context(), auth, req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_comment", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) updateComment(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFromContext(r.Context())
	if !ok {
		writeMissingAuthError(r.Context(), w, "update_comment")
		return
	}
	commentID, err := parseUUIDParam(r, "comment_id")
	if err != nil {
		writeValidationError(r.Context(), w, "update_comment", err)
		return
	}
	var req application.UpdateCommentRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "update_comment", err)
		return
	}
	res, err := h.service.UpdateComment(r.Context(), auth, commentID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "update_comment", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFromContext(r.Context())
	if !ok {
		writeMissingAuthError(r.Context(), w, "delete_comment")
		return
	}
	commentID, err := parseUUIDParam(r, "comment_id")
	if err != nil {
		writeValidationError(r.Context(), w, "delete_comment", err)
		return
	}
	if err := h.service.DeleteComment(r.Context(), auth, commentID); err != nil {
		writeMappedError(r.Context(), w, "delete_comment", err)
		return
	}
	writeMessage(w, http.StatusOK, "Comment deleted")
}
