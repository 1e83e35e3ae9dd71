package testutil

import (
	"testing"

	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"

	probeletv0 "github.com/probelet/probelet-operator/api/v0"
)

// NewScheme returns a scheme with the built-in Kubernetes types and the
// probelet.dev types registered.
func NewScheme(t testing.TB) *runtime.Scheme {
	t.Helper()

	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		t.Fatalf("Failed to add client-go types to scheme: %v", err)
	}
	if err := probeletv0.AddToScheme(scheme); err != nil {
		t.Fatalf("Failed to add probelet types to scheme: %v", err)
	}
	return scheme
}
