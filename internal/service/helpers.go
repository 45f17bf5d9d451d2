package service

import (
	"errors"
	"fmt"

	"github.com/fumiakihyodo/meiwaproducts/internal/apierror"

	"gorm.io/gorm"
)

// translateDuplicate converts a storage-layer unique violation into the
// domain DuplicateKeyError, naming the field in the client-facing detail.
// Other errors pass through unchanged.
func translateDuplicate(err error, field string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &apierror.DuplicateKeyError{
			Detail: fmt.Sprintf("%s already exists", field),
		}
	}
	return err
}

// notFoundOr maps a record-not-found lookup failure to the domain not-found
// error and passes everything else through.
func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.ErrNotFound
	}
	return err
}
