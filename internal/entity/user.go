package entity

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is a registered customer. PasswordHash never leaves the server.
type User struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	Email         string                  `json:"email"`
	Phone         string                  `json:"phone,omitempty"`
	PasswordHash  string                  `json:"-"`
	Role          Role                    `json:"role"`
	Notifications NotificationPreferences `json:"notifications"`
	CreatedAt     time.Time               `json:"createdAt"`
}

// PublicUser is the shape returned by the sign-in endpoint.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// NotificationPreferences are the account's opt-ins.
type NotificationPreferences struct {
	OrderUpdates bool `json:"orderUpdates"`
	Promotions   bool `json:"promotions"`
	Newsletter   bool `json:"newsletter"`
}

type AddressType string

const (
	AddressShipping AddressType = "SHIPPING"
	AddressBilling  AddressType = "BILLING"
)

// DefaultCountry is applied to addresses created without a country.
const DefaultCountry = "India"

// Address is a saved shipping or billing address.
type Address struct {
	ID           string      `json:"id"`
	UserID       string      `json:"userId"`
	Type         AddressType `json:"type"`
	FullName     string      `json:"fullName"`
	Phone        string      `json:"phone"`
	AddressLine1 string      `json:"addressLine1"`
	AddressLine2 string      `json:"addressLine2,omitempty"`
	City         string      `json:"city"`
	State        string      `json:"state"`
	PostalCode   string      `json:"postalCode"`
	Country      string      `json:"country"`
	IsDefault    bool        `json:"isDefault"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// AddressPatch carries the fields of a partial address update; nil means
// unchanged.
type AddressPatch struct {
	Type         *AddressType `json:"type"`
	FullName     *string      `json:"fullName"`
	Phone        *string      `json:"phone"`
	AddressLine1 *string      `json:"addressLine1"`
	AddressLine2 *string      `json:"addressLine2"`
	City         *string      `json:"city"`
	State        *string      `json:"state"`
	PostalCode   *string      `json:"postalCode"`
	Country      *string      `json:"country"`
	IsDefault    *bool        `json:"isDefault"`
}

// Apply copies the set fields onto a.
func (p AddressPatch) Apply(a *Address) {
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.FullName != nil {
		a.FullName = *p.FullName
	}
	if p.Phone != nil {
		a.Phone = *p.Phone
	}
	if p.AddressLine1 != nil {
		a.AddressLine1 = *p.AddressLine1
	}
	if p.AddressLine2 != nil {
		a.AddressLine2 = *p.AddressLine2
	}
	if p.City != nil {
		a.City = *p.City
	}
	if p.State != nil {
		a.State = *p.State
	}
	if p.PostalCode != nil {
		a.PostalCode = *p.PostalCode
	}
	if p.Country != nil {
		a.Country = *p.Country
	}
	if p.IsDefault != nil {
		a.IsDefault = *p.IsDefault
	}
}

// WishlistItem is a saved product.
type WishlistItem struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	ProductID string          `json:"productId"`
	Product   ProductSnapshot `json:"product"`
	CreatedAt time.Time       `json:"createdAt"`
}
