package cart

import (
	"github.com/shopspring/decimal"
)

// Product is an immutable catalog snapshot carried by a cart line.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	Images       []string        `json:"images"`
	StoreName    string          `json:"storeName"`
	Sizes        []string        `json:"sizes,omitempty"`
	FreeShipping bool            `json:"freeShipping"`
}

func (p Product) HasSizes() bool {
	return len(p.Sizes) > 0
}

// Line is one entry of the cart. An empty Size means "no size".
type Line struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Size     string  `json:"size,omitempty"`
}

// Key identifies a line. At most one line per key exists in a cart.
type Key struct {
	ProductID string
	Size      string
}

func (l Line) Key() Key {
	return Key{ProductID: l.Product.ID, Size: l.Size}
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// TotalPrice sums price*quantity over lines without rounding.
func TotalPrice(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func TotalItemCount(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func cloneLines(lines []Line) []Line {
	if lines == nil {
		return []Line{}
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}

func indexOf(lines []Line, k Key) int {
	for i, l := range lines {
		if l.Key() == k {
			return i
		}
	}
	return -1
}

// addLine increments the matching line or appends a new one.
func addLine(lines []Line, p Product, quantity int, size string) []Line {
	if i := indexOf(lines, Key{ProductID: p.ID, Size: size}); i >= 0 {
		lines[i].Quantity += quantity
		return lines
	}
	return append(lines, Line{Product: p, Quantity: quantity, Size: size})
}

func removeLine(lines []Line, k Key) []Line {
	out := lines[:0]
	for _, l := range lines {
		if l.Key() != k {
			out = append(out, l)
		}
	}
	return out
}

func setLineQuantity(lines []Line, k Key, quantity int) []Line {
	if i := indexOf(lines, k); i >= 0 {
		lines[i].Quantity = quantity
	}
	return lines
}
