package ledger

import "errors"

// Every operation aborts with one of these; the surrounding bolt transaction
// rolls back, so a failed operation leaves no partial state behind.
var (
	ErrDuplicateMatch       = errors.New("match id already scheduled")
	ErrMatchNotFound        = errors.New("scheduled match doesn't exist")
	ErrResultNotFound       = errors.New("match result doesn't exist")
	ErrSubscriptionNotFound = errors.New("subscription doesn't exist")

	ErrNotAuthorized = errors.New("caller is not a match participant")
	ErrNotOwner      = errors.New("caller doesn't own the subscription")

	ErrNotStartable     = errors.New("match hasn't reached its scheduled time")
	ErrAlreadyLocked    = errors.New("match is already locked")
	ErrNotLocked        = errors.New("match isn't locked yet")
	ErrAlreadyCompleted = errors.New("match already has a result")
	ErrNotVerified      = errors.New("result isn't verified")
	ErrAlreadyVerified  = errors.New("result is already verified")
	ErrResultMismatch   = errors.New("result doesn't reference this match")

	ErrInsufficientPayment = errors.New("payment below required price")
	ErrInsufficientFunds   = errors.New("caller balance too low")

	ErrSubscriptionExhausted = errors.New("subscription has no queries remaining")
	ErrSubscriptionExpired   = errors.New("subscription validity elapsed")
	ErrUnknownTier           = errors.New("unrecognized subscription tier")

	ErrBucketNotFound = errors.New("bucket doesn't exist")
)
