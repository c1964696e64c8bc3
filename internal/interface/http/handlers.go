package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/streamhub/engagement-hub/internal/application/command"
	"github.com/streamhub/engagement-hub/internal/application/query"
	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/internal/domain/relation"
	"github.com/streamhub/engagement-hub/internal/domain/shared"
	"github.com/streamhub/engagement-hub/internal/interface/http/handlers"
	"github.com/streamhub/engagement-hub/pkg/logger"
)

var validate = validator.New()

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if status.Version == "" {
		status.Version = s.config.Version
	}
	if !status.Healthy {
		writeJSON(w, r, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, r, http.StatusOK, status)
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Ready {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": status.Message,
		})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// RELATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// ToggleResponse is the body of a successful toggle.
type ToggleResponse struct {
	NowActive bool `json:"now_active"`
}

// handleToggleRelation handles POST /relations/{kind}/{targetId}/toggle
func (s *Server) handleToggleRelation(w http.ResponseWriter, r *http.Request) {
	kind, err := relation.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	actor, _ := handlers.CurrentActor(r.Context())
	result, err := s.deps.ToggleRelation.Handle(r.Context(), command.ToggleRelationCommand{
		ActorID:       actor,
		TargetID:      chi.URLParam(r, "targetId"),
		Kind:          kind,
		CorrelationID: middleware.GetReqID(r.Context()),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, ToggleResponse{NowActive: result.NowActive})
}

// handleRelationStatus handles GET /relations/{kind}/{targetId}
func (s *Server) handleRelationStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := handlers.CurrentActor(r.Context())
	view, err := s.deps.RelationStatus.Handle(r.Context(), query.RelationStatusQuery{
		Kind:     chi.URLParam(r, "kind"),
		TargetID: chi.URLParam(r, "targetId"),
		ViewerID: actor,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

// ══════════════════════════════════════════════════════════════════════════════
// FEED HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// FeedRequest holds the feed query string after parsing.
type FeedRequest struct {
	Page      int    `validate:"gte=0"`
	Limit     int    `validate:"gte=0"`
	Sort      string `validate:"max=32"`
	Direction string `validate:"max=8"`
	Search    string `validate:"max=200"`

	Owner         string `validate:"max=64"`
	LikedBy       string `validate:"max=64"`
	Video         string `validate:"max=64"`
	SubscribedBy  string `validate:"max=64"`
	SubscribersOf string `validate:"max=64"`
}

func parseFeedRequest(r *http.Request) (FeedRequest, error) {
	q := r.URL.Query()
	req := FeedRequest{
		Page:          shared.DefaultPage,
		Limit:         shared.DefaultPageSize,
		Sort:          q.Get("sort"),
		Direction:     q.Get("direction"),
		Search:        strings.TrimSpace(q.Get("q")),
		Owner:         q.Get("owner"),
		LikedBy:       q.Get("liked_by"),
		Video:         q.Get("video"),
		SubscribedBy:  q.Get("subscribed_by"),
		SubscribersOf: q.Get("subscribers_of"),
	}

	var err error
	if v := q.Get("page"); v != "" {
		if req.Page, err = strconv.Atoi(v); err != nil {
			return req, shared.ErrInvalidPagination
		}
	}
	if v := q.Get("limit"); v != "" {
		if req.Limit, err = strconv.Atoi(v); err != nil {
			return req, shared.ErrInvalidPagination
		}
	}
	if err := validate.Struct(req); err != nil {
		return req, shared.WrapError("feed", "Validate", shared.ErrValidation, "invalid query parameters", err)
	}
	return req, nil
}

// handleFeed handles GET /feed/{kind}
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	req, err := parseFeedRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	viewer, _ := handlers.CurrentActor(r.Context())
	env, err := s.deps.AssembleFeed.Handle(r.Context(), query.AssembleFeedQuery{
		Kind: chi.URLParam(r, "kind"),
		Filter: content.Filter{
			Search:        req.Search,
			OwnerID:       req.Owner,
			LikedBy:       req.LikedBy,
			VideoID:       req.Video,
			SubscribedBy:  req.SubscribedBy,
			SubscribersOf: req.SubscribersOf,
		},
		Page:      req.Page,
		Limit:     req.Limit,
		SortField: req.Sort,
		Direction: req.Direction,
		ViewerID:  viewer,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, env)
}

// handleGetVideo handles GET /videos/{id}
func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	viewer, _ := handlers.CurrentActor(r.Context())
	result, err := s.deps.GetVideo.Handle(r.Context(), query.GetVideoQuery{
		VideoID:  chi.URLParam(r, "id"),
		ViewerID: viewer,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// statusFor maps a domain error to an HTTP status and error code.
// Toggles never conflict, so 409 is never produced.
func statusFor(err error) (int, string) {
	switch {
	case shared.IsUnauthorized(err):
		return http.StatusUnauthorized, "unauthorized"
	case shared.IsValidation(err):
		return http.StatusBadRequest, "invalid_request"
	case shared.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)

	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			logger.String("path", r.URL.Path),
			logger.Err(err),
		)
		writeJSONError(w, r, status, code, "The request could not be completed")
		return
	}

	message := err.Error()
	var de *shared.DomainError
	if errors.As(err, &de) {
		message = de.Message
	}
	writeJSONError(w, r, status, code, message)
}
