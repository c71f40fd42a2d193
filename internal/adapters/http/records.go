package httpadapter

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
)

func (rt *Router) getDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := rt.dashboard.Dashboard(r.Context(), userFromContext(r.Context()))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (rt *Router) listEntities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entities, err := rt.entities.ListEntities(r.Context(), userFromContext(r.Context()), domain.EntityListFilter{
		Search: q.Get("search"),
		Type:   q.Get("type"),
	})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entities": entities})
}

func (rt *Router) getEntity(w http.ResponseWriter, r *http.Request) {
	detail, err := rt.entities.GetEntity(r.Context(), userFromContext(r.Context()), pathID(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (rt *Router) createEntity(w http.ResponseWriter, r *http.Request) {
	var req domain.Entity
	if err := decodeJSON(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	created, err := rt.entities.CreateEntity(r.Context(), userFromContext(r.Context()), req)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (rt *Router) updateEntity(w http.ResponseWriter, r *http.Request) {
	var patch domain.Patch
	if err := decodeJSON(r, &patch); err != nil {
		rt.writeError(w, r, err)
		return
	}
	if err := rt.entities.UpdateEntity(r.Context(), userFromContext(r.Context()), pathID(r), patch); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) listDeadlines(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			rt.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "list deadlines", fmt.Errorf("limit must be a non-negative integer")))
			return
		}
		limit = n
	}
	views, err := rt.deadlines.ListPending(r.Context(), userFromContext(r.Context()), limit)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deadlines": views})
}

type createDeadlineRequest struct {
	Title    string  `json:"title"`
	DueDate  string  `json:"due_date"`
	Category string  `json:"category"`
	Priority string  `json:"priority"`
	Status   string  `json:"status"`
	EntityID *string `json:"entity_id"`
}

func (rt *Router) createDeadline(w http.ResponseWriter, r *http.Request) {
	var req createDeadlineRequest
	if err := decodeJSON(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		rt.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "create deadline", err))
		return
	}

	created, err := rt.deadlines.CreateDeadline(r.Context(), userFromContext(r.Context()), domain.Deadline{
		Title:    req.Title,
		DueDate:  due,
		Category: req.Category,
		Priority: domain.Priority(req.Priority),
		Status:   domain.DeadlineStatus(req.Status),
		EntityID: req.EntityID,
	})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// parseDueDate accepts a calendar date or a full RFC 3339 timestamp. Empty stays zero.
func parseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("due_date %q is not a date", raw)
	}
	return t, nil
}

func (rt *Router) updateDeadline(w http.ResponseWriter, r *http.Request) {
	var patch domain.Patch
	if err := decodeJSON(r, &patch); err != nil {
		rt.writeError(w, r, err)
		return
	}
	if err := rt.deadlines.UpdateDeadline(r.Context(), userFromContext(r.Context()), pathID(r), patch); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) listNotifications(w http.ResponseWriter, r *http.Request) {
	filter := domain.ReadFilter(r.URL.Query().Get("filter"))
	switch filter {
	case "", domain.ReadFilterAll, domain.ReadFilterUnread, domain.ReadFilterRead:
	default:
		rt.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "list notifications", fmt.Errorf("unknown filter %q", filter)))
		return
	}
	items, err := rt.notifications.ListNotifications(r.Context(), userFromContext(r.Context()), filter)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": items})
}

func (rt *Router) unreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := rt.notifications.UnreadCount(r.Context(), userFromContext(r.Context()))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": n})
}

func (rt *Router) markRead(w http.ResponseWriter, r *http.Request) {
	if err := rt.notifications.MarkRead(r.Context(), userFromContext(r.Context()), pathID(r)); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) markAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := rt.notifications.MarkAllRead(r.Context(), userFromContext(r.Context()))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}

func (rt *Router) dismissSuggestion(w http.ResponseWriter, r *http.Request) {
	if err := rt.suggestions.Dismiss(r.Context(), userFromContext(r.Context()), pathID(r)); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) actionSuggestion(w http.ResponseWriter, r *http.Request) {
	if err := rt.suggestions.Action(r.Context(), userFromContext(r.Context()), pathID(r)); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
