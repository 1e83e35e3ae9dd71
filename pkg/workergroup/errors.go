package workergroup

import (
	"errors"
	"fmt"
)

// Error kinds used as the error_kind label of the failure metric.
const (
	ErrorKindFinalizer            = "finalizer_error"
	ErrorKindKube                 = "kube_error"
	ErrorKindResourceNotInstalled = "resource_not_installed"
	ErrorKindUnknown              = "unknown_error"
)

// ErrResourceNotInstalled is returned by CheckInstalled when the WorkerGroup
// resource type cannot be listed.
var ErrResourceNotInstalled = errors.New("WorkerGroup resource is not installed in the cluster")

// KubeError is a failed call against the cluster API.
type KubeError struct {
	Message string
	Err     error
}

func (e *KubeError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *KubeError) Unwrap() error {
	return e.Err
}

// FinalizerError wraps any error raised while running the finalizer
// protocol, including errors from apply and cleanup.
type FinalizerError struct {
	Err error
}

func (e *FinalizerError) Error() string {
	return fmt.Sprintf("finalizer error: %v", e.Err)
}

func (e *FinalizerError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies err by its outermost domain error.
func ErrorKind(err error) string {
	var finalizerErr *FinalizerError
	var kubeErr *KubeError
	switch {
	case errors.As(err, &finalizerErr):
		return ErrorKindFinalizer
	case errors.As(err, &kubeErr):
		return ErrorKindKube
	case errors.Is(err, ErrResourceNotInstalled):
		return ErrorKindResourceNotInstalled
	default:
		return ErrorKindUnknown
	}
}
