package txlog

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// transactionIDKey is the context key for the transaction id.
type transactionIDKey struct{}

// TransactionIDHeader is the HTTP header echoing the transaction id.
const TransactionIDHeader = "X-Transaction-ID"

// NewTransactionID mints a transaction id of the form TXN-XXXXXXXX.
func NewTransactionID() string {
	return "TXN-" + strings.ToUpper(uuid.New().String()[:8])
}

// WithTransactionID returns a context carrying the given id.
func WithTransactionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, transactionIDKey{}, id)
}

// TransactionIDFromContext returns the transaction id from ctx, or an
// empty string if none is present.
func TransactionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(transactionIDKey{}).(string); ok {
		return id
	}
	return ""
}

// EnsureTransactionID returns ctx with a transaction id, minting one if
// absent. The id is stable for the lifetime of the returned context.
func EnsureTransactionID(ctx context.Context) (context.Context, string) {
	if id := TransactionIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := NewTransactionID()
	return WithTransactionID(ctx, id), id
}
