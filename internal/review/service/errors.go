package service

import (
	"errors"

	dErrors "casework/pkg/domain-errors"
	"casework/pkg/platform/sentinel"
)

// translateErr maps store sentinels to coded errors and passes coded errors
// through. Invariant violations from constructors surface as validation errors.
func translateErr(err error, notFound, internal string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, sentinel.ErrConflict), errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeConflict, "conflicting change")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		if de.Code == dErrors.CodeInvariantViolation {
			return dErrors.New(dErrors.CodeValidation, de.Message)
		}
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internal)
}

func wrapReviewErr(err error, internal string) error {
	return translateErr(err, "review not found", internal)
}

func wrapExceptionErr(err error, internal string) error {
	return translateErr(err, "exception not found", internal)
}

func isNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}
