package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps the quantity of a single cart line, including the
// total reached by merging repeated adds.
const MaxLineQuantity = 999

// Cart is the persisted cart row. Exactly one of UserID and SessionToken is set.
// UpdatedAt moves on every item change.
type Cart struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId,omitempty"`
	SessionToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Owner returns the identity the cart belongs to.
func (c Cart) Owner() Identity {
	return Identity{UserID: c.UserID, SessionToken: c.SessionToken}
}

// CartItem is a persisted line item. Price is intentionally absent: it is
// always read from the product.
type CartItem struct {
	ID        string    `json:"id"`
	CartID    string    `json:"cartId"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}

// CartLine is a line item joined with the live product.
type CartLine struct {
	ID        string          `json:"id"`
	CartID    string          `json:"cartId"`
	ProductID string          `json:"productId"`
	Product   ProductSnapshot `json:"product"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewCartLine joins an item with its product snapshot.
func NewCartLine(item CartItem, p ProductSnapshot) CartLine {
	return CartLine{
		ID:        item.ID,
		CartID:    item.CartID,
		ProductID: item.ProductID,
		Product:   p,
		Quantity:  item.Quantity,
		Price:     p.Price,
		CreatedAt: item.CreatedAt,
	}
}

// Subtotal is price × quantity for this line.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartView is the projection returned to clients.
type CartView struct {
	ID        string          `json:"id"`
	Items     []CartLine      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// NewCartView computes the totals from the lines in the order given.
func NewCartView(cart Cart, lines []CartLine) CartView {
	if lines == nil {
		lines = []CartLine{}
	}
	total, count := Totals(lines)
	return CartView{
		ID:        cart.ID,
		Items:     lines,
		Total:     total,
		ItemCount: count,
	}
}

// Totals returns Σ price × quantity and Σ quantity.
func Totals(lines []CartLine) (decimal.Decimal, int) {
	total := decimal.Zero
	count := 0
	for _, l := range lines {
		total = total.Add(l.Subtotal())
		count += l.Quantity
	}
	return total, count
}
