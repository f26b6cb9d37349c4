package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/identity"
)

// CartEngine is the cart surface exposed over HTTP. *cart.Engine satisfies it.
type CartEngine interface {
	Lines() []cart.Line
	Identity() identity.Identity
	Loading() bool
	SetIdentity(ctx context.Context, id identity.Identity)
	AddItem(ctx context.Context, product cart.Product, quantity int, size string)
	RemoveItem(ctx context.Context, productID, size string)
	SetQuantity(ctx context.Context, productID string, quantity int, size string)
	ChangeSize(ctx context.Context, productID, oldSize, newSize string)
	Clear(ctx context.Context)
}

type IdentityResolver interface {
	Resolve(ctx context.Context, idToken string) (identity.Identity, error)
}

type Payments interface {
	OnOrderRequested(ctx context.Context, contact checkout.ContactBundle) (string, error)
	OnApproved(ctx context.Context)
	OnFailed(ctx context.Context, cause error)
}

type Handler struct {
	engine     CartEngine
	catalog    cart.Catalog
	identities IdentityResolver
	payments   Payments
	logger     *log.Logger
}

func NewHandler(engine CartEngine, catalog cart.Catalog, identities IdentityResolver, payments Payments, logger *log.Logger) *Handler {
	return &Handler{engine: engine, catalog: catalog, identities: identities, payments: payments, logger: logger}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusUnprocessableEntity, "productId is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusUnprocessableEntity, "quantity must be positive")
		return
	}

	products, err := h.catalog.Products(r.Context(), []string{req.ProductID})
	if err != nil {
		h.logger.Printf("lookup product %s: %v", req.ProductID, err)
		writeError(w, http.StatusBadGateway, "product catalog unavailable")
		return
	}
	product, ok := products[req.ProductID]
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if req.Size != "" && !slices.Contains(product.Sizes, req.Size) {
		writeError(w, http.StatusUnprocessableEntity, "size is not offered for this product")
		return
	}

	h.engine.AddItem(r.Context(), product, req.Quantity, req.Size)
	h.writeCart(w)
}

func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Quantity == nil {
		writeError(w, http.StatusUnprocessableEntity, "quantity is required")
		return
	}

	h.engine.SetQuantity(r.Context(), chi.URLParam(r, "productId"), *req.Quantity, r.URL.Query().Get("size"))
	h.writeCart(w)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.engine.RemoveItem(r.Context(), chi.URLParam(r, "productId"), r.URL.Query().Get("size"))
	h.writeCart(w)
}

func (h *Handler) ChangeSize(w http.ResponseWriter, r *http.Request) {
	var req changeSizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	productID := chi.URLParam(r, "productId")
	oldSize := r.URL.Query().Get("size")

	var current *cart.Line
	for _, l := range h.engine.Lines() {
		if l.Key() == (cart.Key{ProductID: productID, Size: oldSize}) {
			current = &l
			break
		}
	}
	if current == nil {
		writeError(w, http.StatusNotFound, "item not in cart")
		return
	}
	if req.Size == "" || !slices.Contains(current.Product.Sizes, req.Size) {
		writeError(w, http.StatusUnprocessableEntity, "size is not offered for this product")
		return
	}

	h.engine.ChangeSize(r.Context(), productID, oldSize, req.Size)
	h.writeCart(w)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.engine.Clear(r.Context())
	h.writeCart(w)
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	token := identity.BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	id, err := h.identities.Resolve(r.Context(), token)
	if err != nil {
		h.logger.Printf("resolve identity: %v", err)
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	h.engine.SetIdentity(r.Context(), id)
	h.writeCart(w)
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.engine.SetIdentity(r.Context(), identity.Anonymous())
	h.writeCart(w)
}

func (h *Handler) RequestOrder(w http.ResponseWriter, r *http.Request) {
	var contact checkout.ContactBundle
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	lines := h.engine.Lines()
	amount, err := h.payments.OnOrderRequested(r.Context(), contact)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrIncompleteSelection):
			writeError(w, http.StatusUnprocessableEntity, "please select a size for every item that requires one")
		case errors.Is(err, checkout.ErrIncompleteContact):
			writeError(w, http.StatusUnprocessableEntity, "please fill in all shipping information")
		default:
			h.logger.Printf("checkout: %v", err)
			writeError(w, http.StatusBadGateway, "failed to create order, please try again")
		}
		return
	}

	writeJSON(w, http.StatusCreated, orderResponse{Amount: amount, Summary: toSummaryResponse(checkout.Summarize(lines))})
}

func (h *Handler) PaymentApproved(w http.ResponseWriter, r *http.Request) {
	h.payments.OnApproved(r.Context())
	h.writeCart(w)
}

func (h *Handler) PaymentFailed(w http.ResponseWriter, r *http.Request) {
	var req paymentFailedRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Reason == "" {
		req.Reason = "unspecified"
	}
	h.payments.OnFailed(r.Context(), errors.New(req.Reason))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeCart(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, toCartResponse(h.engine.Identity(), h.engine.Loading(), h.engine.Lines()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
