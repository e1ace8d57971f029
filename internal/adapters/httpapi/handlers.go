package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Overland-East-Bay/club-portal-api/internal/app/clubs"
	"github.com/Overland-East-Bay/club-portal-api/internal/app/mutation"
	"github.com/Overland-East-Bay/club-portal-api/internal/platform/logger"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/edgerepo"
)

// Server implements the club portal HTTP handlers on top of the app services.
type Server struct {
	clubs    *clubs.Service
	sessions *Sessions
	log      logger.Logger
}

func NewServer(clubsSvc *clubs.Service, sessions *Sessions, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{clubs: clubsSvc, sessions: sessions, log: log.Named("httpapi")}
}

// GetClub serves GET /clubs/{clubId}. Authenticated viewers also get their
// membership and follow status, resolved against the backend on every load.
func (s *Server) GetClub(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer := IdentityFromContext(ctx)

	d, err := s.clubs.GetClub(ctx, viewer, chi.URLParam(r, "clubId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := clubDetailsResponse{Club: toClubDTO(d.Club)}
	if viewer == nil {
		resp.Viewer = toViewerDTO(d, nil)
	} else {
		st, _ := s.sessions.For(viewer).Status.Resolve(ctx, viewer, d.Club.ID)
		resp.Viewer = toViewerDTO(d, &st)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) JoinClub(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, mutation.KindJoin)
}

func (s *Server) LeaveClub(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, mutation.KindLeave)
}

func (s *Server) FollowClub(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, mutation.KindFollow)
}

func (s *Server) UnfollowClub(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, mutation.KindUnfollow)
}

func (s *Server) mutate(w http.ResponseWriter, r *http.Request, k mutation.Kind) {
	ctx := r.Context()
	viewer := IdentityFromContext(ctx)

	clubID, err := s.clubs.MutationTarget(ctx, viewer, chi.URLParam(r, "clubId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := s.sessions.For(viewer).Mutations.Run(ctx, k, viewer, clubID)
	writeJSON(w, mutationHTTPStatus(out), toMutationResponse(out))
}

func mutationHTTPStatus(o mutation.Outcome) int {
	switch {
	case o.Succeeded():
		return http.StatusOK
	case o.Code == mutation.CodeUnauthenticated:
		return http.StatusUnauthorized
	case o.Code == mutation.CodeAlreadyPending:
		return http.StatusConflict
	case errors.Is(o.Err, edgerepo.ErrClubNotFound):
		// The club was removed between the existence check and the write.
		return http.StatusNotFound
	case o.Code == mutation.CodeTransportFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ListNotifications serves GET /notifications: the viewer's bell, refreshed on
// every call.
func (s *Server) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer := IdentityFromContext(ctx)
	if viewer == nil {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}

	snap := s.sessions.For(viewer).Bell.Refresh(ctx, viewer.Role)
	writeJSON(w, http.StatusOK, toNotificationsResponse(snap))
}

func (s *Server) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	regs, err := s.clubs.ListRegistrations(ctx, IdentityFromContext(ctx), chi.URLParam(r, "clubId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRegistrationsResponse(regs))
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var ae *clubs.Error
	if !errors.As(err, &ae) {
		s.log.Error(r.Context(), "request failed", logger.String("path", r.URL.Path), logger.Error(err))
	}
	writeAppError(w, r, err)
}
