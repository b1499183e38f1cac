package workflow

import "errors"

var (
	ErrEvidenceUploadFailed = errors.New("evidence photo could not be stored")
	ErrSubmitInProgress     = errors.New("a scan is already being submitted for this delivery note")
)
