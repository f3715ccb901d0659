package handler

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/movie-catalog/backend/internal/handler/movie"
	"github.com/zhouzirui/movie-catalog/backend/internal/middleware"
	"github.com/zhouzirui/movie-catalog/backend/internal/service/catalog"
	"github.com/zhouzirui/movie-catalog/backend/pkg/utils"
)

const gzipMinSize = 256

// Options configure the HTTP surface.
type Options struct {
	Logger        zerolog.Logger
	AllowedOrigin string
	CacheControl  string
	Gzip          bool
	// Sentry captures panics before Recoverer answers 500. Requires sentry.Init.
	Sentry bool
}

// NewRouter wires HTTP routes to the catalog service.
func NewRouter(catalogSvc *catalog.Service, opts Options) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	if opts.Sentry {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.Use(chimw.StripSlashes)
	r.Use(chimw.GetHead)
	r.Use(middleware.CORS(opts.AllowedOrigin))

	compress := func(next http.Handler) http.Handler { return next }
	if opts.Gzip {
		wrapper, err := gzhttp.NewWrapper(gzhttp.MinSize(gzipMinSize))
		if err != nil {
			return nil, err
		}
		compress = func(next http.Handler) http.Handler { return wrapper(next) }
	}

	movieHandler := movie.New(catalogSvc)
	wsHandler := movie.NewWebSocketHandler(catalogSvc, opts.AllowedOrigin)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"movies": catalogSvc.Count(),
		})
	})

	r.Group(func(api chi.Router) {
		api.Use(compress)
		api.Use(middleware.CacheControl(opts.CacheControl))
		movieHandler.RegisterRoutes(api)
	})

	// Kept outside the gzip group: the upgrade needs the raw connection.
	wsHandler.RegisterWebSocketRoutes(r)

	return r, nil
}
