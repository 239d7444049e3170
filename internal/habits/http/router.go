package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/habits/internal/habits/filestore"
	"github.com/aussiebroadwan/habits/internal/habits/service"
	"github.com/aussiebroadwan/habits/internal/habits/store"
	"github.com/aussiebroadwan/habits/pkg/httpx"
	"github.com/aussiebroadwan/habits/pkg/jwtx"
	"github.com/aussiebroadwan/habits/pkg/slogx"
)

// RateLimits groups the limiter profiles applied per route class.
type RateLimits struct {
	Auth   httpx.RateLimitConfig
	Write  httpx.RateLimitConfig
	Read   httpx.RateLimitConfig
	Upload httpx.RateLimitConfig
}

// DefaultRateLimits mirrors the httpx profiles.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Auth:   httpx.StrictLimit,
		Write:  httpx.ModerateLimit,
		Read:   httpx.LenientLimit,
		Upload: httpx.ModerateLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	identity     Identity
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store         store.Store
	files         *filestore.Store
	UserService   *service.UserService
	HabitService  *service.HabitService
	ForumService  *service.ForumService
	UploadService *service.UploadService

	// RateLimits may be replaced before ApplyRoutes.
	RateLimits RateLimits
	// StaticDir, when set, is served at / for the bundled frontend.
	StaticDir string
	// MaxUploadBytes caps request bodies on the upload route.
	MaxUploadBytes int64
}

type RouterOptions struct {
	Verifier       jwtx.Verifier
	RequireAuth    bool
	BuildVersion   string
	Store          store.Store
	Files          *filestore.Store
	Logger         *slog.Logger
	AllowedOrigins []string
}

func NewRouter(opts RouterOptions) *Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     opts.Verifier,
		identity:     Identity{RequireAuth: opts.RequireAuth},
		buildVersion: opts.BuildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        opts.Store,
		files:        opts.Files,
		RateLimits:   DefaultRateLimits(),
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(opts.AllowedOrigins),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerHabits()
	r.registerForum()
	r.registerUploads()
	r.registerSystem()
	r.registerStatic()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// api wraps h with session verification followed by the given middlewares.
func (r *Router) api(h http.HandlerFunc, mws ...httpx.Middleware) http.Handler {
	if r.verifier == nil {
		return httpx.Chain(h, mws...)
	}
	chain := []httpx.Middleware{httpx.AuthnMiddleware(r.verifier, false)}
	return httpx.Chain(h, append(chain, mws...)...)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{UserService: r.UserService}

	// Credential endpoints get the strict profile per IP.
	r.Mux.Handle("POST /api/signup",
		httpx.Chain(http.HandlerFunc(h.Signup), httpx.RateLimitByIP(r.RateLimits.Auth)),
	)
	r.Mux.Handle("POST /api/login",
		httpx.Chain(http.HandlerFunc(h.Login), httpx.RateLimitByIP(r.RateLimits.Auth)),
	)
}

func (r *Router) registerHabits() {
	h := &HabitsHandler{HabitService: r.HabitService, Identity: r.identity}

	read := httpx.RateLimitByUser(r.RateLimits.Read)
	write := httpx.RateLimitByUser(r.RateLimits.Write)

	r.Mux.Handle("GET /api/habits", r.api(h.List, read))
	r.Mux.Handle("POST /api/habits", r.api(h.Create, write))
	r.Mux.Handle("GET /api/habits/completions", r.api(h.Completions, read))
	r.Mux.Handle("DELETE /api/habits/{id}", r.api(h.Delete, write))
	r.Mux.Handle("POST /api/habits/{id}/complete", r.api(h.Complete, write))
	r.Mux.Handle("DELETE /api/habits/{id}/complete", r.api(h.Uncomplete, write))
}

func (r *Router) registerForum() {
	h := &ForumHandler{ForumService: r.ForumService, Identity: r.identity}

	read := httpx.RateLimitByIP(r.RateLimits.Read)
	write := httpx.RateLimitByUser(r.RateLimits.Write)

	r.Mux.Handle("GET /api/threads", r.api(h.ListThreads, read))
	r.Mux.Handle("POST /api/threads", r.api(h.CreateThread, write))
	r.Mux.Handle("GET /api/threads/{id}/posts", r.api(h.ListPosts, read))
	r.Mux.Handle("POST /api/threads/{id}/posts", r.api(h.CreatePost, write))
}

func (r *Router) registerUploads() {
	h := &UploadHandler{
		UploadService: r.UploadService,
		Identity:      r.identity,
		MaxBytes:      r.MaxUploadBytes,
	}

	r.Mux.Handle("POST /api/upload", r.api(h.Upload, httpx.RateLimitByUser(r.RateLimits.Upload)))
	r.Mux.Handle("GET /api/uploads", r.api(h.List, httpx.RateLimitByUser(r.RateLimits.Read)))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.files))
}

func (r *Router) registerStatic() {
	if r.StaticDir == "" {
		return
	}
	r.Mux.Handle("GET /", http.FileServer(http.Dir(r.StaticDir)))
}
