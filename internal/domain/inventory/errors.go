package inventory

import "errors"

var (
	ErrNotFound             = errors.New("record not found")
	ErrParentNotFound       = errors.New("parent record not found")
	ErrDuplicateSerial      = errors.New("serial number already exists in this delivery note")
	ErrDuplicateRITM        = errors.New("project with this RITM code already exists")
	ErrVerificationConflict = errors.New("equipment item is already verified")
	ErrValidation           = errors.New("validation error")

	// ErrStoreUnavailable wraps every persistence failure that is not a
	// domain outcome. Callers treat it as fatal for the current request.
	ErrStoreUnavailable = errors.New("entity store unavailable")
)
