package httpapi

import (
	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/identity"
)

type lineResponse struct {
	ProductID string   `json:"productId"`
	Name      string   `json:"name"`
	StoreName string   `json:"storeName"`
	Price     string   `json:"price"`
	Quantity  int      `json:"quantity"`
	Size      string   `json:"size,omitempty"`
	Sizes     []string `json:"sizes,omitempty"`
	Subtotal  string   `json:"subtotal"`
}

type summaryResponse struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

type cartResponse struct {
	Mode       string          `json:"mode"`
	UserID     string          `json:"userId,omitempty"`
	Loading    bool            `json:"loading"`
	Items      []lineResponse  `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice string          `json:"totalPrice"`
	Summary    summaryResponse `json:"summary"`
}

func toSummaryResponse(s checkout.Summary) summaryResponse {
	return summaryResponse{
		Subtotal: s.Subtotal.StringFixed(2),
		Shipping: s.Shipping.StringFixed(2),
		Tax:      s.Tax.StringFixed(2),
		Total:    s.Total.StringFixed(2),
	}
}

func toCartResponse(id identity.Identity, loading bool, lines []cart.Line) cartResponse {
	resp := cartResponse{
		Mode:       id.Mode.String(),
		UserID:     id.ID,
		Loading:    loading,
		Items:      make([]lineResponse, 0, len(lines)),
		TotalItems: cart.TotalItemCount(lines),
		TotalPrice: cart.TotalPrice(lines).StringFixed(2),
		Summary:    toSummaryResponse(checkout.Summarize(lines)),
	}
	for _, l := range lines {
		resp.Items = append(resp.Items, lineResponse{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			StoreName: l.Product.StoreName,
			Price:     l.Product.Price.StringFixed(2),
			Quantity:  l.Quantity,
			Size:      l.Size,
			Sizes:     l.Product.Sizes,
			Subtotal:  l.Subtotal().StringFixed(2),
		})
	}
	return resp
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type changeSizeRequest struct {
	Size string `json:"size"`
}

type orderResponse struct {
	Amount  string          `json:"amount"`
	Summary summaryResponse `json:"summary"`
}

type paymentFailedRequest struct {
	Reason string `json:"reason"`
}
