package domain

import (
	"regexp"
	"strings"
	"time"
)

// Review statuses shared by stores and store applications.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Store is one stringing shop; the unit of data isolation.
type Store struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	OwnerEmail   string    `json:"ownerEmail,omitempty"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Status       string    `json:"status"`
	IsActive     bool      `json:"isActive"`
	ContactEmail string    `json:"contactEmail,omitempty"`
	ContactPhone string    `json:"contactPhone,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Application is a prospective shop's onboarding request.
type Application struct {
	ID              string     `json:"id"`
	ApplicantID     string     `json:"applicantId"`
	OwnerEmail      string     `json:"ownerEmail"`
	BusinessName    string     `json:"businessName"`
	Slug            string     `json:"slug"`
	ContactPhone    string     `json:"contactPhone,omitempty"`
	City            string     `json:"city,omitempty"`
	Message         string     `json:"message,omitempty"`
	Status          string     `json:"status"`
	ReviewedBy      *string    `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
	StoreID         *string    `json:"storeId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// AuditEntry records an administrative action.
type AuditEntry struct {
	ActorID    string
	Action     string
	TargetType string
	TargetID   string
	Detail     map[string]interface{}
}

// Slug availability reasons.
const (
	SlugInvalidFormat = "invalid_format"
	SlugReserved      = "reserved"
	SlugTaken         = "taken"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

var reservedSlugs = map[string]struct{}{
	"admin": {}, "api": {}, "app": {}, "apply": {}, "dashboard": {}, "help": {},
	"kiosk": {}, "login": {}, "logout": {}, "merchants": {}, "orders": {},
	"pricing": {}, "ralli": {}, "settings": {}, "signup": {}, "stores": {},
	"support": {}, "www": {},
}

const (
	minSlugLen = 3
	maxSlugLen = 48
)

// SlugProblem returns the reason a slug can never be used, or "" when the
// slug is well formed and not reserved. It does not check for existing use.
func SlugProblem(slug string) string {
	if len(slug) < minSlugLen || len(slug) > maxSlugLen || !slugPattern.MatchString(slug) {
		return SlugInvalidFormat
	}
	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return SlugInvalidFormat
	}
	if _, ok := reservedSlugs[slug]; ok {
		return SlugReserved
	}
	return ""
}

// Slugify derives a slug candidate from a display name.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if len(out) > maxSlugLen {
		out = strings.TrimSuffix(out[:maxSlugLen], "-")
	}
	return out
}
