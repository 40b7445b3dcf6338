package notify

import (
	"context"
)

// Completion describes a finished stringing job to announce to its customer.
type Completion struct {
	OrderID       string
	StoreName     string
	CustomerName  string
	CustomerEmail string
	Language      string
	RacketBrand   string
	RacketModel   string
}

// Notifier announces completed orders. Implementations report whether a
// message was actually handed to the provider.
type Notifier interface {
	NotifyCompletion(ctx context.Context, c Completion) (bool, error)
}

// Nop is wired when no outbound mail is configured.
type Nop struct{}

func (Nop) NotifyCompletion(context.Context, Completion) (bool, error) {
	return false, nil
}
