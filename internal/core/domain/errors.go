package domain

import (
	"errors"
	"fmt"
)

var (
	ErrScreenshotNotFound  = errors.New("screenshot not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrDuplicateAsset      = errors.New("asset already imported")
	ErrDecodeFailure       = errors.New("image decode failure")
	ErrClassifyUnavailable = errors.New("remote classifier unavailable")
	ErrInvalidCategory     = errors.New("category not in taxonomy")
	ErrInvalidInput        = errors.New("invalid input")
	ErrTemporary           = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
