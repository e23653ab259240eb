// Package transfer moves asset quantities between offices and answers
// questions about past movements.
package transfer

import (
	"errors"
	"fmt"

	"github.com/vanminhgroup/qlts/internal/auth"
	"github.com/vanminhgroup/qlts/internal/store"
)

var (
	// ErrInvalidQuantity is returned for a quantity that is not a positive integer.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrNotFound is returned when an asset, office or log entry is absent.
	ErrNotFound = store.ErrNotFound
	// ErrForbidden is returned for an export from an office that does not
	// manage the asset.
	ErrForbidden = errors.New("export only from the managing office")
	// ErrInsufficientStock is returned when the source holds less than requested.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidRequest is returned for malformed input such as a bad id list.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrStore wraps failures of the underlying database.
	ErrStore = errors.New("store error")
)

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}

// classify wraps err as ErrStore unless it already carries a known error.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		ErrInvalidQuantity, ErrNotFound, ErrForbidden, ErrInsufficientStock,
		ErrInvalidRequest, ErrStore, auth.ErrUnauthorized,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return storeErr(op, err)
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, ErrNotFound)
}
