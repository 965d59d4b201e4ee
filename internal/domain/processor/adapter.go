package processor

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/granada-os/credits-api/internal/domain/payment"
)

// Each processor adapter translates its provider's callback payload into the
// reconciliation service's normalized Callback and calls it in-process. The
// original system re-forwarded these over an internal HTTP hop; a direct call
// removes that hop and its failure modes.

// Reconciler is the slice of payment.Service the adapters use.
type Reconciler interface {
	RecordSuccess(ctx context.Context, cb payment.Callback) (*payment.SuccessResult, error)
	RecordFailure(ctx context.Context, cb payment.Callback, errorMessage string) (*payment.FailureResult, error)
}

// customerFrom maps the shared customer payload.
func customerFrom(c payment.CustomerPayload) payment.Customer {
	return payment.Customer{Name: c.Name, Email: c.Email, Phone: c.Phone}
}

// marshalFields serializes a typed provider struct for opaque storage. The
// typed shape has already been validated, so failures here are programming
// errors and only logged.
func marshalFields(v interface{}) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal provider fields")
		return nil
	}
	return raw
}

// zeroIfNil guards optional amounts.
func zeroIfNil(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
