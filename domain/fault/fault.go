// Package fault defines the error taxonomy shared by every storefront module.
//
// A *Error carries a stable Code plus the structured context a caller needs to
// tell the shopper what to fix ("only 2 left in size M"). Errors serialize to
// JSON so they survive request-reply calls between modules.
package fault

import (
	"errors"
	"fmt"
)

// Code identifies a failure category.
type Code string

const (
	CodeValidation            Code = "validation_error"
	CodeNotFound              Code = "not_found"
	CodeInsufficientStock     Code = "insufficient_stock"
	CodeNotPurchasable        Code = "not_purchasable"
	CodePromoNotFound         Code = "promo_not_found"
	CodePromoInactive         Code = "promo_inactive"
	CodeUsageLimitReached     Code = "usage_limit_reached"
	CodeMinimumNotMet         Code = "minimum_not_met"
	CodeAudienceMismatch      Code = "audience_mismatch"
	CodeUnknownDeliveryMethod Code = "unknown_delivery_method"
	CodeInvalidTransition     Code = "invalid_transition"
	CodeConflict              Code = "conflict"
	CodeServiceUnavailable    Code = "service_unavailable"
)

// Kind groups codes by how a caller should react.
type Kind int

const (
	KindValidation Kind = iota
	KindConflict
	KindInvariant
	KindUnavailable
)

// Kind reports the category of the code.
func (c Code) Kind() Kind {
	switch c {
	case CodeValidation, CodeUnknownDeliveryMethod:
		return KindValidation
	case CodeInvalidTransition:
		return KindInvariant
	case CodeServiceUnavailable:
		return KindUnavailable
	default:
		return KindConflict
	}
}

// Error is a typed, user-facing failure.
type Error struct {
	Code      Code   `json:"code"`
	Message   string `json:"message"`
	ProductID string `json:"product_id,omitempty"`
	Size      string `json:"size,omitempty"`
	Requested int    `json:"requested,omitempty"`
	Available *int   `json:"available,omitempty"`
	Shortfall int64  `json:"shortfall,omitempty"`
	PromoCode string `json:"promo_code,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying infrastructure error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is matching.
var (
	ErrValidation            = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrNotFound              = &Error{Code: CodeNotFound, Message: "not found"}
	ErrInsufficientStock     = &Error{Code: CodeInsufficientStock, Message: "insufficient stock"}
	ErrNotPurchasable        = &Error{Code: CodeNotPurchasable, Message: "product not purchasable"}
	ErrPromoNotFound         = &Error{Code: CodePromoNotFound, Message: "promo code not found"}
	ErrPromoInactive         = &Error{Code: CodePromoInactive, Message: "promo code inactive"}
	ErrUsageLimitReached     = &Error{Code: CodeUsageLimitReached, Message: "promo code usage limit reached"}
	ErrMinimumNotMet         = &Error{Code: CodeMinimumNotMet, Message: "minimum order amount not met"}
	ErrAudienceMismatch      = &Error{Code: CodeAudienceMismatch, Message: "promo code not available for this customer"}
	ErrUnknownDeliveryMethod = &Error{Code: CodeUnknownDeliveryMethod, Message: "unknown delivery method"}
	ErrInvalidTransition     = &Error{Code: CodeInvalidTransition, Message: "invalid status transition"}
	ErrConflict              = &Error{Code: CodeConflict, Message: "conflict"}
	ErrServiceUnavailable    = &Error{Code: CodeServiceUnavailable, Message: "service unavailable"}
)

// Validation returns a validation error with a formatted message.
func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a not-found error for the named entity.
func NotFound(entity, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %q not found", entity, id)}
}

// VariantNotFound is returned when a (product, size) row does not exist.
func VariantNotFound(productID, size string) *Error {
	return &Error{
		Code:      CodeNotFound,
		Message:   fmt.Sprintf("size %s of product %s does not exist", size, productID),
		ProductID: productID,
		Size:      size,
	}
}

// InsufficientStock names the offending variant and what is left of it.
func InsufficientStock(productID, size string, requested, available int) *Error {
	if available < 0 {
		available = 0
	}
	msg := fmt.Sprintf("only %d left in size %s", available, size)
	if available == 0 {
		msg = fmt.Sprintf("size %s is sold out", size)
	}
	return &Error{
		Code:      CodeInsufficientStock,
		Message:   msg,
		ProductID: productID,
		Size:      size,
		Requested: requested,
		Available: &available,
	}
}

// NotPurchasable is returned for hidden, unreleased or gated products.
func NotPurchasable(productID, reason string) *Error {
	return &Error{
		Code:      CodeNotPurchasable,
		Message:   fmt.Sprintf("product %s cannot be ordered: %s", productID, reason),
		ProductID: productID,
	}
}

// PromoNotFound is returned when no promo code matches.
func PromoNotFound(code string) *Error {
	return &Error{Code: CodePromoNotFound, Message: fmt.Sprintf("promo code %s does not exist", code), PromoCode: code}
}

// PromoInactive is returned for a disabled promo code.
func PromoInactive(code string) *Error {
	return &Error{Code: CodePromoInactive, Message: fmt.Sprintf("promo code %s is no longer active", code), PromoCode: code}
}

// UsageLimitReached is returned when a capped code is exhausted.
func UsageLimitReached(code string) *Error {
	return &Error{Code: CodeUsageLimitReached, Message: fmt.Sprintf("promo code %s has been fully redeemed", code), PromoCode: code}
}

// MinimumNotMet reports how much more the shopper must spend.
func MinimumNotMet(code string, shortfall int64) *Error {
	return &Error{
		Code:      CodeMinimumNotMet,
		Message:   fmt.Sprintf("add %d more to use promo code %s", shortfall, code),
		PromoCode: code,
		Shortfall: shortfall,
	}
}

// AudienceMismatch is returned when the customer's segment is not targeted.
func AudienceMismatch(code, audience string) *Error {
	return &Error{
		Code:      CodeAudienceMismatch,
		Message:   fmt.Sprintf("promo code %s is reserved for %s customers", code, audience),
		PromoCode: code,
	}
}

// UnknownDeliveryMethod is returned by the pricing engine.
func UnknownDeliveryMethod(method string) *Error {
	return &Error{Code: CodeUnknownDeliveryMethod, Message: fmt.Sprintf("unknown delivery method %q", method)}
}

// InvalidTransition is returned for a forbidden order status change.
func InvalidTransition(from, to string) *Error {
	return &Error{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot move order from %s to %s", from, to),
		From:    from,
		To:      to,
	}
}

// Conflict is returned when a concurrent update won.
func Conflict(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// Unavailable wraps a collaborator failure as a transient error.
func Unavailable(op string, cause error) *Error {
	return &Error{Code: CodeServiceUnavailable, Message: op + " unavailable", cause: cause}
}

// As extracts a *Error from err. Errors that are not typed faults are
// reported as ServiceUnavailable.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var f *Error
	if errors.As(err, &f) {
		return f
	}
	return Unavailable("operation", err)
}

// From converts err to a *Error for transport, passing nil through.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	return As(err)
}

// Err converts a transported *Error back into an error, nil-safe.
func (e *Error) Err() error {
	if e == nil {
		return nil
	}
	return e
}

// Reply is embedded in request-reply responses so a typed failure crosses
// the bus intact.
type Reply struct {
	Fault *Error `json:"fault,omitempty"`
}

// Failure returns the carried error, or nil on success.
func (r *Reply) Failure() error {
	return r.Fault.Err()
}

// Fail records err on the reply.
func (r *Reply) Fail(err error) {
	r.Fault = From(err)
}
