package movie

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/zhouzirui/movie-catalog/backend/internal/middleware"
	"github.com/zhouzirui/movie-catalog/backend/internal/service/catalog"
	"github.com/zhouzirui/movie-catalog/backend/pkg/utils"
)

// Handler serves the catalog over REST.
type Handler struct {
	catalog *catalog.Service
}

// New creates the movie handler.
func New(catalogSvc *catalog.Service) *Handler {
	return &Handler{catalog: catalogSvc}
}

// RegisterRoutes registers the movie routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/movies", h.handleListMovies)
	r.Get("/movies/{movieID}", h.handleGetMovie)
}

func (h *Handler) handleListMovies(w http.ResponseWriter, r *http.Request) {
	h.serveQuery(w, r, catalog.ListQuery{})
}

func (h *Handler) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	h.serveQuery(w, r, catalog.GetQuery{ID: movieID(r)})
}

// movieID returns the decoded id segment. chi routes on RawPath when the
// request carries percent escapes, leaving the parameter encoded. A segment
// that fails to decode is passed through and misses like any unknown id.
func movieID(r *http.Request) string {
	raw := chi.URLParam(r, "movieID")
	id, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return id
}

// serveQuery is the single entry point both routes dispatch through.
func (h *Handler) serveQuery(w http.ResponseWriter, r *http.Request, q catalog.Query) {
	body, err := h.catalog.Render(r.Context(), q)
	if err != nil {
		status, message := errorResponse(err)
		if status >= http.StatusInternalServerError {
			hlog.FromRequest(r).Error().Err(err).Msg("catalog query failed")
			if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
				hub.WithScope(func(scope *sentry.Scope) {
					if id := middleware.GetRequestID(r.Context()); id != "" {
						scope.SetTag("request_id", id)
					}
					hub.CaptureException(err)
				})
			}
		}
		w.Header().Set("Cache-Control", "no-store")
		utils.RespondError(w, status, message)
		return
	}
	utils.RespondRawJSON(w, http.StatusOK, body)
}

// errorResponse maps catalog errors to an HTTP status and a client-facing message.
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, catalog.ErrMovieNotFound):
		return http.StatusNotFound, "not found"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
