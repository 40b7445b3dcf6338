package domain

import (
	"strings"
	"time"
)

// Customer is a store's customer; phone is unique within a store.
type Customer struct {
	ID                string    `json:"id"`
	StoreID           string    `json:"storeId"`
	Name              string    `json:"name"`
	Phone             string    `json:"phone"`
	Email             string    `json:"email,omitempty"`
	PreferredLanguage string    `json:"preferredLanguage,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// NormalizePhone keeps digits and a leading plus sign so that
// "(604) 555-0101" and "604-555-0101" address the same customer.
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	for i, r := range raw {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "+" {
		return ""
	}
	return out
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
