package domain

import (
	"strings"
	"time"
)

// OrderStatus is the lifecycle state of a stringing job.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderPickedUp   OrderStatus = "picked_up"
)

// Tension bounds in lbs.
const (
	MinTension = 15
	MaxTension = 35
)

var orderStatusRank = map[OrderStatus]int{
	OrderPending:    0,
	OrderInProgress: 1,
	OrderCompleted:  2,
	OrderPickedUp:   3,
}

// ParseOrderStatus accepts the canonical values and the hyphenated
// vocabulary used by the kiosk frontend ("in-progress", "ready", "picked-up").
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "in-progress":
		s = string(OrderInProgress)
	case "ready":
		s = string(OrderCompleted)
	case "picked-up":
		s = string(OrderPickedUp)
	}
	st := OrderStatus(s)
	if _, ok := orderStatusRank[st]; !ok {
		return "", false
	}
	return st, true
}

// IsCompletion reports whether the status carries a completion timestamp.
func (s OrderStatus) IsCompletion() bool {
	return s == OrderCompleted || s == OrderPickedUp
}

// TransitionPolicy decides which status changes are legal.
type TransitionPolicy string

const (
	// TransitionPermissive allows any status in the closed set so staff can
	// correct mistakes.
	TransitionPermissive TransitionPolicy = "permissive"
	// TransitionForward allows staying put or moving to a later state only.
	TransitionForward TransitionPolicy = "forward"
)

// ParseTransitionPolicy defaults to permissive for unknown values.
func ParseTransitionPolicy(raw string) TransitionPolicy {
	if TransitionPolicy(strings.ToLower(strings.TrimSpace(raw))) == TransitionForward {
		return TransitionForward
	}
	return TransitionPermissive
}

// Allows reports whether from -> to is legal under the policy.
func (p TransitionPolicy) Allows(from, to OrderStatus) bool {
	toRank, ok := orderStatusRank[to]
	if !ok {
		return false
	}
	if p != TransitionForward {
		return true
	}
	fromRank, ok := orderStatusRank[from]
	if !ok {
		return true
	}
	return toRank >= fromRank
}

// Order is one racket-stringing job.
type Order struct {
	ID             string      `json:"id"`
	StoreID        string      `json:"storeId"`
	CustomerID     string      `json:"customerId"`
	CustomerName   string      `json:"customerName,omitempty"`
	CustomerPhone  string      `json:"customerPhone,omitempty"`
	CustomerEmail  string      `json:"customerEmail,omitempty"`
	CustomerLang   string      `json:"customerLanguage,omitempty"`
	RacketBrand    string      `json:"racketBrand"`
	RacketModel    string      `json:"racketModel,omitempty"`
	StringCategory string      `json:"stringCategory,omitempty"`
	StringFocus    string      `json:"stringFocus,omitempty"`
	StringBrand    string      `json:"stringBrand,omitempty"`
	StringModel    string      `json:"stringModel,omitempty"`
	Tension        *int        `json:"tension,omitempty"`
	ServiceType    string      `json:"serviceType"`
	Notes          string      `json:"notes,omitempty"`
	Status         OrderStatus `json:"status"`
	CreatedAt      time.Time   `json:"createdAt"`
	CompletedAt    *time.Time  `json:"completedAt"`
}
