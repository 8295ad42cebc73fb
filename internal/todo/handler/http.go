// Package handler serves the todo item endpoints.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"todo-api/internal/platform/ownership"
	"todo-api/internal/server/httpx"
	"todo-api/internal/server/middleware"
	"todo-api/internal/todo/domain"
	"todo-api/internal/todo/repository"
	listdomain "todo-api/internal/todolist/domain"
)

const (
	msgInvalidItemID   = "Error 400: Invalid item id"
	msgInvalidListID   = "Error 400: Invalid list id"
	msgItemNotFound    = "Error 404: Todo item not found"
	msgListNotFound    = "Error 404: Todo list not found"
	msgTitleEmpty      = "Error 400: Title cannot be empty"
	msgTitleTooLong    = "Error 400: Title must be at most 255 characters"
	msgInvalidPriority = "Error 400: Invalid priority provided"
	msgInvalidDueDate  = "Error 400: Invalid due date"
	msgInvalidStatus   = "Error 400: Invalid completed status"
)

var errInvalidValue = errors.New("invalid value")

// ListGetter resolves the list an item is attached to.
type ListGetter interface {
	GetByID(ctx context.Context, id int64) (*listdomain.TodoList, error)
}

// Handler serves todo item endpoints for the authenticated account.
type Handler struct {
	items  repository.Repository
	lists  ListGetter
	policy ownership.Policy
	log    *slog.Logger
}

// NewHandler returns a Handler. log may be nil.
func NewHandler(items repository.Repository, lists ListGetter, policy ownership.Policy, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{items: items, lists: lists, policy: policy, log: log}
}

// List handles GET /todo/items. completed_only=true keeps completed items only.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		httpx.Unauthorized(w)
		return
	}
	completedOnly := r.URL.Query().Get("completed_only") == "true"
	items, err := h.items.ListByCreator(r.Context(), accountID, completedOnly)
	if err != nil {
		httpx.Internal(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"todo_items": items})
}

// ListByList handles GET /todo/list/{id}/items.
func (h *Handler) ListByList(w http.ResponseWriter, r *http.Request) {
	listID, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.Message(w, http.StatusBadRequest, msgInvalidListID)
		return
	}
	list, err := h.lists.GetByID(r.Context(), listID)
	if err != nil {
		httpx.Internal(w, r, h.log, err)
		return
	}
	if list == nil {
		httpx.Message(w, http.StatusNotFound, msgListNotFound)
		return
	}
	if _, err := ownership.RequireOwner(r.Context(), h.policy, list.CreatorID); err != nil {
		ownership.WriteError(w, r, h.log, err)
		return
	}
	items, err := h.items.ListByList(r.Context(), listID)
	if err != nil {
		httpx.Internal(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"todo_items": items})
}

// Get handles GET /todo/item/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.ownedItem(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"todo_item": item})
}

// Create handles POST /todo/item. title is required; description, due_at, priority and
// list_id are optional. Attaching to a list the caller does not own is forbidden.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		httpx.Unauthorized(w)
		return
	}
	if !httpx.BindForm(w, r) {
		return
	}
	if missing := httpx.MissingKeys(r, "title"); len(missing) > 0 {
		httpx.Message(w, http.StatusBadRequest, "Error 400: Missing keys: "+strings.Join(missing, ", "))
		return
	}
	item := &domain.Todo{CreatorID: accountID}
	if !h.bindFields(w, r, item) {
		return
	}
	if err := h.items.Create(r.Context(), item); err != nil {
		httpx.Internal(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"todo_item": item})
}

// Update handles PUT /todo/item/{id}. Every mutable field except due_at must be sent;
// due_at is changed only when present.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	item, ok := h.ownedItem(w, r)
	if !ok {
		return
	}
	if !httpx.BindForm(w, r) {
		return
	}
	if missing := httpx.MissingKeys(r, "title", "description", "priority", "list_id", "completed"); len(missing) > 0 {
		httpx.Message(w, http.StatusBadRequest, "Error 400: Missing keys: "+strings.Join(missing, ", "))
		return
	}
	switch v, _ := httpx.FormValue(r, "completed"); v {
	case "true":
		item.Completed = true
	case "false":
		item.Completed = false
	default:
		httpx.Message(w, http.StatusBadRequest, msgInvalidStatus)
		return
	}
	if !h.bindFields(w, r, item) {
		return
	}
	if err := h.items.Update(r.Context(), item); err != nil {
		httpx.Internal(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":   "Todo item updated successfully",
		"todo_item": item,
	})
}

// ToggleCompleted handles PUT /todo/item/complete/{id}.
func (h *Handler) ToggleCompleted(w http.ResponseWriter, r *http.Request) {
	item, ok := h.ownedItem(w, r)
	if !ok {
		return
	}
	updated, err := h.items.ToggleCompleted(r.Context(), item.ID)
	if err != nil {
		httpx.Internal(w, r, h.log, err)
		return
	}
	if updated == nil {
		httpx.Message(w, http.StatusNotFound, msgItemNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":   "Todo item updated successfully",
		"todo_item": updated,
	})
}

// Delete handles DELETE /todo/item/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.ownedItem(w, r)
	if !ok {
		return
	}
	deleted, err := h.items.Delete(r.Context(), item.ID)
	if err != nil {
		httpx.Internal(w, r, h.log, err)
		return
	}
	if !deleted {
		httpx.Message(w, http.StatusNotFound, msgItemNotFound)
		return
	}
	httpx.Message(w, http.StatusOK, "Todo item deleted successfully")
}

// ownedItem loads the {id} item and checks the caller owns it, writing the error response otherwise.
func (h *Handler) ownedItem(w http.ResponseWriter, r *http.Request) (*domain.Todo, bool) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		httpx.Message(w, http.StatusBadRequest, msgInvalidItemID)
		return nil, false
	}
	item, err := h.items.GetByID(r.Context(), id)
	if err != nil {
		httpx.Internal(w, r, h.log, err)
		return nil, false
	}
	if item == nil {
		httpx.Message(w, http.StatusNotFound, msgItemNotFound)
		return nil, false
	}
	if _, err := ownership.RequireOwner(r.Context(), h.policy, item.CreatorID); err != nil {
		ownership.WriteError(w, r, h.log, err)
		return nil, false
	}
	return item, true
}

// bindFields copies the present form fields onto item. The title key must already be checked.
func (h *Handler) bindFields(w http.ResponseWriter, r *http.Request, item *domain.Todo) bool {
	title, _ := httpx.FormValue(r, "title")
	if title == "" {
		httpx.Message(w, http.StatusBadRequest, msgTitleEmpty)
		return false
	}
	if utf8.RuneCountInString(title) > domain.MaxTitleLen {
		httpx.Message(w, http.StatusBadRequest, msgTitleTooLong)
		return false
	}
	item.Title = title

	if v, ok := httpx.FormValue(r, "description"); ok {
		item.Description = nil
		if v != "" {
			item.Description = &v
		}
	}
	if v, ok := httpx.FormValue(r, "due_at"); ok {
		due, err := parseOptionalTime(v)
		if err != nil {
			httpx.Message(w, http.StatusBadRequest, msgInvalidDueDate)
			return false
		}
		item.DueAt = due
	}
	if v, ok := httpx.FormValue(r, "priority"); ok {
		// priority is an INTEGER column.
		p, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			httpx.Message(w, http.StatusBadRequest, msgInvalidPriority)
			return false
		}
		item.Priority = int(p)
	}
	if v, ok := httpx.FormValue(r, "list_id"); ok {
		listID, err := parseOptionalID(v)
		if err != nil {
			httpx.Message(w, http.StatusBadRequest, msgInvalidListID)
			return false
		}
		if listID != nil && !h.canUseList(w, r, *listID) {
			return false
		}
		item.ListID = listID
	}
	return true
}

// canUseList writes 403 unless the caller owns the list. A missing list is also forbidden.
func (h *Handler) canUseList(w http.ResponseWriter, r *http.Request, listID int64) bool {
	list, err := h.lists.GetByID(r.Context(), listID)
	if err != nil {
		httpx.Internal(w, r, h.log, err)
		return false
	}
	if list == nil {
		httpx.Message(w, http.StatusForbidden, httpx.MsgForbidden)
		return false
	}
	if _, err := ownership.RequireOwner(r.Context(), h.policy, list.CreatorID); err != nil {
		ownership.WriteError(w, r, h.log, err)
		return false
	}
	return true
}

func isNull(v string) bool {
	return v == "" || v == "null"
}

func parseOptionalID(v string) (*int64, error) {
	if isNull(v) {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return nil, errInvalidValue
	}
	return &id, nil
}

func parseOptionalTime(v string) (*time.Time, error) {
	if isNull(v) {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
