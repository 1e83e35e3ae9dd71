package v0

import (
	"errors"
	"fmt"
	"strings"
)

// MaxInstanceNameLength is the longest accepted worker instance name. It
// matches the limit Kubernetes puts on label values and DNS labels.
const MaxInstanceNameLength = 63

var (
	ErrEmptyInstanceName    = errors.New("worker instance name cannot be empty")
	ErrInstanceNameTooLong  = fmt.Errorf("worker instance name cannot be longer than %d characters", MaxInstanceNameLength)
	ErrInstanceNameBadChars = errors.New("worker instance name cannot contain . or / or %")
)

// WorkerInstanceName is the validated name of a single worker instance.
//
// Values must be obtained through NewWorkerInstanceName so every holder works
// with a name that is already valid.
type WorkerInstanceName string

// NewWorkerInstanceName validates raw and converts it to a WorkerInstanceName.
func NewWorkerInstanceName(raw string) (WorkerInstanceName, error) {
	switch {
	case raw == "":
		return "", ErrEmptyInstanceName
	case len(raw) > MaxInstanceNameLength:
		return "", fmt.Errorf("%q: %w", raw, ErrInstanceNameTooLong)
	case strings.ContainsAny(raw, "./%"):
		return "", fmt.Errorf("%q: %w", raw, ErrInstanceNameBadChars)
	}
	return WorkerInstanceName(raw), nil
}

// String returns the raw name.
func (n WorkerInstanceName) String() string {
	return string(n)
}
