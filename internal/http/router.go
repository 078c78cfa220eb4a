package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Yorinashi/Kopi-ni-yoshi/internal/middleware"
)

type RouterOptions struct {
	Logger         *log.Logger
	AllowOrigins   []string
	RequestTimeout time.Duration
}

func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if len(opts.AllowOrigins) == 0 {
		opts.AllowOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Recover(opts.Logger))
	r.Use(middleware.CORS(opts.AllowOrigins))
	r.Use(chimw.Logger)
	if opts.RequestTimeout > 0 {
		r.Use(chimw.Timeout(opts.RequestTimeout))
	}

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", h.ListCatalog)

		r.Route("/registers/{registerId}", func(r chi.Router) {
			r.Get("/order", h.GetOrder)
			r.Delete("/order", h.ClearOrder)
			r.Post("/selection", h.SelectItem)
			r.Post("/items", h.AddItem)
			r.Post("/items/{name}/increment", h.IncrementItem)
			r.Post("/items/{name}/decrement", h.DecrementItem)
			r.Delete("/items/{name}", h.RemoveItem)
			r.Post("/checkout", h.Checkout)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
