package httpserver

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/bryanwahyu/fraudscope/internal/application/console"
	"github.com/bryanwahyu/fraudscope/internal/application/render"
	"github.com/bryanwahyu/fraudscope/internal/domain/analysis"
	"github.com/bryanwahyu/fraudscope/internal/logger"
	"github.com/bryanwahyu/fraudscope/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// Deps are the collaborators of the console router.
type Deps struct {
	Console *console.Service
	Render  render.Options
	// FreetextInput replaces the customer dropdown with a text field.
	FreetextInput bool
	BackendURL    string
	CORSOrigins   []string
	// RateLimiter guards the action endpoints; nil disables it.
	RateLimiter *middleware.RateLimiter
	Health      map[string]middleware.HealthChecker
}

type Router struct {
	svc  *console.Service
	deps Deps
	tmpl *template.Template
}

// NewRouter builds the console HTTP surface.
func NewRouter(deps Deps) (http.Handler, error) {
	tmpl, err := template.New("base").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r := &Router{svc: deps.Console, deps: deps, tmpl: tmpl}

	mux := chi.NewRouter()
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)

	mux.Get("/health", middleware.HealthHandler(deps.Health))
	mux.Get("/readyz", middleware.ReadinessHandler)
	mux.Get("/livez", middleware.LivenessHandler)
	mux.Handle("/metrics", middleware.MetricsHandler())

	mux.Get("/", r.wrap(r.handleIndex))

	mux.Route("/actions", func(rt chi.Router) {
		if deps.RateLimiter != nil {
			rt.Use(deps.RateLimiter.Middleware)
		}
		rt.Post("/run", r.wrap(r.handleRun))
		rt.Post("/customers", r.wrap(r.handleCustomers))
		rt.Post("/reset", r.wrap(r.handleReset))
	})

	mux.Route("/api", func(rt chi.Router) {
		rt.Use(cors.Handler(cors.Options{
			AllowedOrigins: deps.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		}))
		rt.Get("/state", r.wrap(r.handleState))
		rt.Get("/result/raw", r.wrap(r.handleRawResult))
	})

	return mux, nil
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, analysis.ErrInvalidRequest) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			logger.FromContext(req.Context()).Error("request failed", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// pageData feeds index.html and the results partial.
type pageData struct {
	Snapshot    console.Snapshot
	Page        *render.PageView
	Models      []analysis.LLMModel
	Freetext    bool
	CacheToggle bool
	BackendURL  string
}

func (r *Router) pageData() pageData {
	snap := r.svc.Snapshot()
	d := pageData{
		Snapshot:    snap,
		Models:      analysis.Models,
		Freetext:    r.deps.FreetextInput,
		CacheToggle: snap.Options.CacheToggle,
		BackendURL:  r.deps.BackendURL,
	}
	if snap.Result != nil {
		page := render.Page(snap.Result, r.deps.Render)
		d.Page = &page
	}
	return d
}

// GET /
func (r *Router) handleIndex(w http.ResponseWriter, req *http.Request) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return r.tmpl.ExecuteTemplate(w, "index.html", r.pageData())
}

// runForm is the POST /actions/run body.
type runForm struct {
	CustomerName string `validate:"max=200"`
	LLMModel     string `validate:"omitempty,oneof=ollama gpt5"`
	UseCache     string `validate:"omitempty,oneof=true false"`
}

// POST /actions/run
func (r *Router) handleRun(w http.ResponseWriter, req *http.Request) error {
	if err := req.ParseForm(); err != nil {
		return fmt.Errorf("%w: %v", analysis.ErrInvalidRequest, err)
	}

	params := r.svc.Params()
	form := runForm{
		CustomerName: middleware.StripControl(req.PostForm.Get("customer_name")),
		LLMModel:     req.PostForm.Get("llm_model"),
		UseCache:     req.PostForm.Get("use_cache"),
	}
	if err := middleware.ValidateStruct(form); err != nil {
		return fmt.Errorf("%w: %v", analysis.ErrInvalidRequest, err)
	}

	// a disabled select is not submitted, keep the current choice then
	if req.PostForm.Has("customer_name") {
		params.CustomerName = form.CustomerName
	}
	if form.LLMModel != "" {
		params.LLMModel = analysis.LLMModel(form.LLMModel)
	}
	if form.UseCache != "" {
		params.UseCache, _ = strconv.ParseBool(form.UseCache)
	}
	if err := r.svc.SetParams(params); err != nil {
		return err
	}

	err := r.svc.StartRun(req.Context())
	if err != nil && !errors.Is(err, analysis.ErrBlankCustomer) {
		return err
	}
	http.Redirect(w, req, "/", http.StatusSeeOther)
	return nil
}

// POST /actions/customers
func (r *Router) handleCustomers(w http.ResponseWriter, req *http.Request) error {
	r.svc.StartCustomers(req.Context())
	http.Redirect(w, req, "/", http.StatusSeeOther)
	return nil
}

// POST /actions/reset
func (r *Router) handleReset(w http.ResponseWriter, req *http.Request) error {
	r.svc.Reset()
	http.Redirect(w, req, "/", http.StatusSeeOther)
	return nil
}

type stateResponse struct {
	console.Snapshot
	Loading bool             `json:"loading"`
	Page    *render.PageView `json:"page,omitempty"`
}

// GET /api/state
func (r *Router) handleState(w http.ResponseWriter, req *http.Request) error {
	d := r.pageData()
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(stateResponse{
		Snapshot: d.Snapshot,
		Loading:  d.Snapshot.Loading(),
		Page:     d.Page,
	})
}

// GET /api/result/raw
// 204 until an analysis has succeeded.
func (r *Router) handleRawResult(w http.ResponseWriter, req *http.Request) error {
	snap := r.svc.Snapshot()
	if snap.Result == nil {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, err := w.Write([]byte(render.Raw(snap.Result.Raw).JSON))
	return err
}
