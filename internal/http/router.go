package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler, allowOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(cors(allowOrigins))

	r.Get("/health", h.Health)

	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productId}", h.SetQuantity)
		r.Delete("/items/{productId}", h.RemoveItem)
		r.Post("/items/{productId}/size", h.ChangeSize)
	})

	r.Route("/api/identity", func(r chi.Router) {
		r.Post("/", h.SignIn)
		r.Delete("/", h.SignOut)
	})

	r.Route("/api/checkout", func(r chi.Router) {
		r.Post("/orders", h.RequestOrder)
		r.Post("/approved", h.PaymentApproved)
		r.Post("/failed", h.PaymentFailed)
	})

	return r
}
