// Package handler serves the /todo/list endpoints.
package handler

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"todo-api/internal/platform/ownership"
	"todo-api/internal/server/httpx"
	"todo-api/internal/server/middleware"
	"todo-api/internal/todolist/domain"
	"todo-api/internal/todolist/repository"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-f]{6}$`)

const (
	msgInvalidListID = "Error 400: Invalid list id"
	msgListNotFound  = "Error 404: Todo list not found"
	msgInvalidColor  = "Error 400: Invalid color"
	msgNameEmpty     = "Error 400: Name cannot be empty"
	msgNameTooLong   = "Error 400: Name must be at most 255 characters"
)

// Handler serves todo list endpoints for the authenticated account.
type Handler struct {
	lists  repository.Repository
	policy ownership.Policy
	log    *slog.Logger
}

// NewHandler returns a Handler. log may be nil.
func NewHandler(lists repository.Repository, policy ownership.Policy, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{lists: lists, policy: policy, log: log}
}

// checkName writes a 400 and returns false when name is empty or longer than the column allows.
func checkName(w http.ResponseWriter, name string) bool {
	switch {
	case name == "":
		httpx.Message(w, http.StatusBadRequest, msgNameEmpty)
		return false
	case utf8.RuneCountInString(name) > domain.MaxNameLen:
		httpx.Message(w, http.StatusBadRequest, msgNameTooLong)
		return false
	}
	return true
}

// normalizeColor lowercases v and reports whether it is a #rrggbb color.
func normalizeColor(v string) (string, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	return v, colorPattern.MatchString(v)
}

// List handles GET /todo/lists.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		httpx.Unauthorized(w)
		return
	}
	lists, err := h.lists.ListByCreator(r.Context(), accountID)
	if err != nil {
		httpx.Internal(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"todo_lists": lists})
}

// Create handles POST /todo/list with name and an optional color.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		httpx.Unauthorized(w)
		return
	}
	if !httpx.BindForm(w, r) {
		return
	}
	name, ok := httpx.FormValue(r, "name")
	if !ok {
		httpx.Message(w, http.StatusBadRequest, "Error 400: Missing fields: name")
		return
	}
	if !checkName(w, name) {
		return
	}
	list := &domain.TodoList{CreatorID: accountID, Name: name}
	if v, present := httpx.FormValue(r, "color"); present && v != "" {
		c, valid := normalizeColor(v)
		if !valid {
			httpx.Message(w, http.StatusBadRequest, msgInvalidColor)
			return
		}
		list.Color = c
	}
	if err := h.lists.Create(r.Context(), list); err != nil {
		httpx.Internal(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message":   "Todo list created successfully",
		"todo_list": list,
	})
}

// Update handles PUT /todo/list/{id} with name and/or color. Neither present yields 304.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	list, ok := h.ownedList(w, r)
	if !ok {
		return
	}
	if !httpx.BindForm(w, r) {
		return
	}
	name, hasName := httpx.FormValue(r, "name")
	color, hasColor := httpx.FormValue(r, "color")
	if !hasName && !hasColor {
		httpx.JSON(w, http.StatusNotModified, nil)
		return
	}
	if hasName {
		if !checkName(w, name) {
			return
		}
		list.Name = name
	}
	if hasColor {
		c, valid := normalizeColor(color)
		if !valid {
			httpx.Message(w, http.StatusBadRequest, msgInvalidColor)
			return
		}
		list.Color = c
	}
	if err := h.lists.Update(r.Context(), list); err != nil {
		httpx.Internal(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":   "Todo list updated successfully",
		"todo_list": list,
	})
}

// Delete handles DELETE /todo/list/{id}. Items in the list are kept and unassigned.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	list, ok := h.ownedList(w, r)
	if !ok {
		return
	}
	deleted, err := h.lists.Delete(r.Context(), list.ID)
	if err != nil {
		httpx.Internal(w, r, h.log, err)
		return
	}
	if !deleted {
		httpx.Message(w, http.StatusNotFound, msgListNotFound)
		return
	}
	httpx.Message(w, http.StatusOK, "Todo list deleted successfully")
}

// ownedList loads the {id} list and checks the caller owns it, writing the error response otherwise.
func (h *Handler) ownedList(w http.ResponseWriter, r *http.Request) (*domain.TodoList, bool) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.Message(w, http.StatusBadRequest, msgInvalidListID)
		return nil, false
	}
	list, err := h.lists.GetByID(r.Context(), id)
	if err != nil {
		httpx.Internal(w, r, h.log, err)
		return nil, false
	}
	if list == nil {
		httpx.Message(w, http.StatusNotFound, msgListNotFound)
		return nil, false
	}
	if _, err := ownership.RequireOwner(r.Context(), h.policy, list.CreatorID); err != nil {
		ownership.WriteError(w, r, h.log, err)
		return nil, false
	}
	return list, true
}
