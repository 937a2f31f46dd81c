// Package errs defines the error taxonomy shared by the club services and the transport layer.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors. Wrap them with fmt.Errorf("%w: ...") and test with errors.Is.
var (
	// ErrAuthorization means the viewer is not allowed to perform the action.
	ErrAuthorization = errors.New("not authorized")
	// ErrBadRequest means the request violates an invariant.
	ErrBadRequest = errors.New("bad request")
	// ErrInsufficientFunds means the ledger balance check failed.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrCapacityExceeded means a tier has no remaining spots.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrUnauthenticated means no valid viewer session was supplied.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Authorization returns an ErrAuthorization with a user facing message.
func Authorization(msg string) error {
	return fmt.Errorf("%w: %s", ErrAuthorization, msg)
}

// BadRequest returns an ErrBadRequest with a user facing message.
func BadRequest(msg string) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, msg)
}

// NotFound returns an ErrNotFound naming the missing entity.
func NotFound(entity string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, entity)
}

// InsufficientFunds returns an ErrInsufficientFunds carrying the shortfall.
func InsufficientFunds(balance, required int64) error {
	return fmt.Errorf("%w: balance %d is below the required %d", ErrInsufficientFunds, balance, required)
}

// CapacityError reports a full tier together with the spots left.
type CapacityError struct {
	TierID         int64
	RemainingSpots int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: tier %d has %d spots left", ErrCapacityExceeded, e.TierID, e.RemainingSpots)
}

// Is makes errors.Is(err, ErrCapacityExceeded) match.
func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

// Message strips the sentinel prefix so transports can show the detail alone.
func Message(err error) string {
	if err == nil {
		return ""
	}
	for _, sentinel := range []error{ErrAuthorization, ErrBadRequest, ErrInsufficientFunds, ErrNotFound, ErrUnauthenticated} {
		prefix := sentinel.Error() + ": "
		if msg := err.Error(); len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return err.Error()
}
