package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dkravetz/sixtyfix/internal/common"
	"github.com/dkravetz/sixtyfix/internal/server/models"
)

type itemResponse struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func toItemResponse(item *models.Item) (itemResponse, error) {
	payload := map[string]any{}
	if item.Data != "" {
		if err := json.Unmarshal([]byte(item.Data), &payload); err != nil {
			return itemResponse{}, err
		}
	}
	return itemResponse{
		ID:        item.ID,
		Title:     item.Title,
		Payload:   payload,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}, nil
}

type listItemsResponse struct {
	Items          []itemResponse `json:"items"`
	FallbackNotice string         `json:"fallback_notice,omitempty"`
}

// handleListItems handles GET /items: the user's items newest-first, plus a
// notice when the last plan generation degraded to the local template.
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.items.List(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		fail(w, http.StatusInternalServerError, "Could not load items")
		return
	}

	resp := listItemsResponse{Items: []itemResponse{}}
	for _, item := range items {
		ir, err := toItemResponse(item)
		if err != nil {
			fail(w, http.StatusInternalServerError, "Could not load items")
			return
		}
		resp.Items = append(resp.Items, ir)
	}
	if reason := s.generator.FallbackReason(); reason != "" {
		resp.FallbackNotice = "AI generation fell back to the local template: " + reason
	}

	ok(w, http.StatusOK, "", resp)
}

type saveItemRequest struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Payload map[string]any `json:"payload"`
}

// handleSaveItem handles POST /items/save. An empty id creates a new item;
// a non-empty id updates one of the caller's items.
func (s *Server) handleSaveItem(w http.ResponseWriter, r *http.Request) {
	var req saveItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := s.items.Save(r.Context(), UserIDFromContext(r.Context()), req.ID, req.Title, req.Payload)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			fail(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, common.ErrorNotFound):
			fail(w, http.StatusNotFound, "Not found")
		default:
			s.logger.Error(r.Context(), "item save failed", "error", err.Error())
			fail(w, http.StatusInternalServerError, "Save failed")
		}
		return
	}

	ir, err := toItemResponse(item)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Save failed")
		return
	}
	ok(w, http.StatusOK, "Item saved", ir)
}

// handleViewItem handles GET /items/{id}. Viewing an item with content but
// no plan generates and stores one first.
func (s *Server) handleViewItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.items.View(r.Context(), UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			fail(w, http.StatusNotFound, "Not found")
			return
		}
		s.logger.Error(r.Context(), "item view failed", "error", err.Error())
		fail(w, http.StatusInternalServerError, "Load failed")
		return
	}

	ir, err := toItemResponse(item)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Load failed")
		return
	}
	ok(w, http.StatusOK, "", ir)
}

// handleDeleteItem handles DELETE /items/{id}.
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	err := s.items.Delete(r.Context(), UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			fail(w, http.StatusNotFound, "Not found")
			return
		}
		fail(w, http.StatusInternalServerError, "Delete failed")
		return
	}
	ok(w, http.StatusOK, "Item deleted", nil)
}

// handleItemPDF handles GET /items/{id}/pdf. PDF export is not available;
// the caller is sent back to the item.
func (s *Server) handleItemPDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// ownership check before redirecting
	if _, err := s.items.View(r.Context(), UserIDFromContext(r.Context()), id); err != nil {
		fail(w, http.StatusNotFound, "Not found")
		return
	}
	http.Redirect(w, r, "/items/"+id, http.StatusSeeOther)
}
