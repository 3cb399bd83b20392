package domain

import "time"

// Address is a delivery address in the signed-in user's address book.
type Address struct {
	ID         string `json:"id"`
	Type       string `json:"type,omitempty"`
	FullName   string `json:"fullName"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone,omitempty"`
	IsDefault  bool   `json:"isDefault"`
}

type PaymentKind string

const (
	PaymentCard PaymentKind = "card"
	PaymentUPI  PaymentKind = "upi"
	PaymentCOD  PaymentKind = "cod"
)

// PaymentMethod is a saved payment instrument. Only the masked identifier is kept.
type PaymentMethod struct {
	ID        string      `json:"id"`
	Kind      PaymentKind `json:"kind"`
	Masked    string      `json:"masked"`
	Holder    string      `json:"holder,omitempty"`
	IsDefault bool        `json:"isDefault"`
}

// Profile is the session user. PasswordHash is only populated on the
// registered copy and never serialized to clients.
type Profile struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone,omitempty"`
	Avatar        string    `json:"avatar,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	PhoneVerified bool      `json:"phoneVerified"`
	PasswordHash  string    `json:"passwordHash,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ProfileOverrides are user-edited fields merged onto the session profile.
type ProfileOverrides struct {
	Name          *string `json:"name,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Avatar        *string `json:"avatar,omitempty"`
	EmailVerified *bool   `json:"emailVerified,omitempty"`
	PhoneVerified *bool   `json:"phoneVerified,omitempty"`
}

// Apply merges the overrides onto p.
func (o ProfileOverrides) Apply(p Profile) Profile {
	if o.Name != nil {
		p.Name = *o.Name
	}
	if o.Phone != nil {
		p.Phone = *o.Phone
	}
	if o.Avatar != nil {
		p.Avatar = *o.Avatar
	}
	if o.EmailVerified != nil {
		p.EmailVerified = *o.EmailVerified
	}
	if o.PhoneVerified != nil {
		p.PhoneVerified = *o.PhoneVerified
	}
	return p
}
