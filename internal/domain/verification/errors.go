package verification

import "errors"

var (
	ErrEmptySerial          = errors.New("serial number is empty")
	ErrDeliveryNoteNotFound = errors.New("delivery note not found")
	ErrSerialNotFound       = errors.New("serial number does not belong to this delivery note")
	ErrAlreadyVerified      = errors.New("equipment item is already verified")
	ErrEquipmentNotFound    = errors.New("equipment item not found")
)
