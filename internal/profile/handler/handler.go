package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"profiled/internal/platform/middleware"
	"profiled/internal/profile"
	dErrors "profiled/pkg/domain-errors"
	"profiled/pkg/platform/httputil"
	pstrings "profiled/pkg/platform/strings"
)

// ProfileService defines the resolver operations the HTTP layer delegates to.
type ProfileService interface {
	Get(ctx context.Context, id string) profile.ResolvedProfile
	Ingest(raw map[string]profile.RawProfile, knownIDs []string)
	Preload(ctx context.Context, ids []string) error
	Invalidate(ids ...string)
	Reset()
	Len() int
}

//go:generate mockgen -source=handler.go -destination=mocks/profile-mocks.go -package=mocks ProfileService

// Handler exposes the profile resolution surface. It carries no business
// logic; lookups, preloads, and eviction all happen in the service.
type Handler struct {
	logger         *slog.Logger
	profiles       ProfileService
	preloadTimeout time.Duration
}

// New creates a new profile Handler.
func New(profiles ProfileService, logger *slog.Logger, preloadTimeout time.Duration) *Handler {
	if preloadTimeout <= 0 {
		preloadTimeout = 10 * time.Second
	}
	return &Handler{
		logger:         logger,
		profiles:       profiles,
		preloadTimeout: preloadTimeout,
	}
}

// Register mounts the profile routes with their middleware chain.
func (h *Handler) Register(r chi.Router) {
	profileRouter := chi.NewRouter()
	profileRouter.Use(middleware.Recovery(h.logger))
	profileRouter.Use(middleware.RequestID)
	profileRouter.Use(middleware.Logger(h.logger))
	profileRouter.Use(middleware.Timeout(h.preloadTimeout))
	profileRouter.Get("/profiles/stats", h.handleStats)
	profileRouter.Get("/profiles/{id}", h.handleGet)
	profileRouter.Post("/profiles/preload", h.handlePreload)
	profileRouter.Post("/profiles/ingest", h.handleIngest)
	profileRouter.Post("/profiles/invalidate", h.handleInvalidate)

	r.Mount("/", profileRouter)
}

// handleGet resolves one identifier. Always 200: at worst the body is a
// fallback profile.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "missing profile id"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.profiles.Get(r.Context(), id))
}

type preloadRequest struct {
	IDs []string `json:"ids"`
}

func (h *Handler) handlePreload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req preloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	ids := pstrings.DedupeAndTrim(req.IDs)
	if len(ids) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "ids must not be empty"))
		return
	}

	if err := h.profiles.Preload(ctx, ids); err != nil {
		h.logger.WarnContext(ctx, "profile preload failed",
			"request_id", middleware.GetRequestID(ctx),
			"requested", len(ids),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeUnavailable, "profile source failed", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ingestRequest struct {
	Profiles map[string]profile.RawProfile `json:"profiles"`
	KnownIDs []string                      `json:"known_ids"`
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if len(req.Profiles) == 0 && len(req.KnownIDs) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "nothing to ingest"))
		return
	}

	h.profiles.Ingest(req.Profiles, pstrings.DedupeAndTrim(req.KnownIDs))
	w.WriteHeader(http.StatusNoContent)
}

type invalidateRequest struct {
	IDs []string `json:"ids"`
}

// handleInvalidate evicts the given identifiers; an empty list resets the
// whole cache.
func (h *Handler) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	var req invalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if ids := pstrings.DedupeAndTrim(req.IDs); len(ids) > 0 {
		h.profiles.Invalidate(ids...)
	} else {
		h.profiles.Reset()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"resolved": h.profiles.Len()})
}
