// Package httpserver exposes the collection service over HTTP/JSON.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/andrsk/listkeeper/internal/errs"
	"github.com/andrsk/listkeeper/internal/model"
	"github.com/andrsk/listkeeper/internal/service"
)

// Server wires the collection service into HTTP handlers.
type Server struct {
	collections service.CollectionService
	log         *zap.Logger
}

// New constructs a Server with injected dependencies.
func New(collections service.CollectionService, log *zap.Logger) *Server {
	return &Server{collections: collections, log: log}
}

// Router builds the route tree with the middleware chain applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(Recover(s.log))
	r.Use(Logging(s.log))

	r.Get("/healthz", s.health)

	r.Group(func(r chi.Router) {
		r.Use(Auth)
		r.Post("/api/collections", s.createCollection)
		r.Get("/api/collections", s.listCollections)
		r.Post("/api/collections/{collectionID}/items", s.addItem)
		r.Post("/api/items/move", s.moveItem)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "unknown route")
	})
	return r
}

type createCollectionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type addItemRequest struct {
	ItemID string `json:"itemId"`
	Note   string `json:"note"`
}

type moveItemRequest struct {
	ItemID   string `json:"itemId"`
	SourceID int64  `json:"sourceId"`
	TargetID int64  `json:"targetId"`
}

type collectionResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type collectionSummaryResponse struct {
	collectionResponse
	ItemCount      int64 `json:"itemCount"`
	RelevanceScore int64 `json:"relevanceScore"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) createCollection(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())

	var req createCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := s.collections.Create(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCollectionResponse(c))
}

func (s *Server) listCollections(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())

	list, err := s.collections.List(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	out := make([]collectionSummaryResponse, 0, len(list))
	for i := range list {
		out = append(out, collectionSummaryResponse{
			collectionResponse: toCollectionResponse(&list[i].Collection),
			ItemCount:          list[i].ItemCount,
			RelevanceScore:     list[i].RelevanceScore,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())

	collectionID, err := strconv.ParseInt(chi.URLParam(r, "collectionID"), 10, 64)
	if err != nil || collectionID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid collection id")
		return
	}
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.collections.AddItem(r.Context(), userID, collectionID, req.ItemID, req.Note); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) moveItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())

	var req moveItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.collections.MoveItem(r.Context(), userID, req.ItemID, req.SourceID, req.TargetID); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func toCollectionResponse(c *model.Collection) collectionResponse {
	return collectionResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// writeServiceError maps the domain taxonomy onto status codes. Anything
// unmapped is logged and reported as a bare 500.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrCapacityExceeded):
		writeError(w, http.StatusBadRequest, "collection is full")
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, errs.ErrConflict):
		writeError(w, http.StatusConflict, "item already present")
	default:
		s.log.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
