package testutil

import (
	"context"
	"errors"
	"sync"

	"sigs.k8s.io/controller-runtime/pkg/client"
)

// FailureConfig configures when the fake client should return errors.
// Each hook receives the object, key or list and returns a non-nil error to
// fail the operation before it reaches the wrapped client.
type FailureConfig struct {
	OnGet          func(key client.ObjectKey) error
	OnList         func(list client.ObjectList) error
	OnCreate       func(obj client.Object) error
	OnUpdate       func(obj client.Object) error
	OnPatch        func(obj client.Object) error
	OnDelete       func(obj client.Object) error
	OnStatusUpdate func(obj client.Object) error
	OnStatusPatch  func(obj client.Object) error
}

// fakeClientWithFailures wraps a real fake client and injects failures based on configuration.
type fakeClientWithFailures struct {
	client.Client
	config *FailureConfig
}

// NewFakeClientWithFailures creates a fake client that can be configured to fail operations.
func NewFakeClientWithFailures(baseClient client.Client, config *FailureConfig) client.Client {
	if config == nil {
		config = &FailureConfig{}
	}
	return &fakeClientWithFailures{
		Client: baseClient,
		config: config,
	}
}

func (c *fakeClientWithFailures) Get(
	ctx context.Context,
	key client.ObjectKey,
	obj client.Object,
	opts ...client.GetOption,
) error {
	if err := check(c.config.OnGet, key); err != nil {
		return err
	}
	return c.Client.Get(ctx, key, obj, opts...)
}

func (c *fakeClientWithFailures) List(
	ctx context.Context,
	list client.ObjectList,
	opts ...client.ListOption,
) error {
	if err := check(c.config.OnList, list); err != nil {
		return err
	}
	return c.Client.List(ctx, list, opts...)
}

func (c *fakeClientWithFailures) Create(
	ctx context.Context,
	obj client.Object,
	opts ...client.CreateOption,
) error {
	if err := check(c.config.OnCreate, obj); err != nil {
		return err
	}
	return c.Client.Create(ctx, obj, opts...)
}

func (c *fakeClientWithFailures) Update(
	ctx context.Context,
	obj client.Object,
	opts ...client.UpdateOption,
) error {
	if err := check(c.config.OnUpdate, obj); err != nil {
		return err
	}
	return c.Client.Update(ctx, obj, opts...)
}

func (c *fakeClientWithFailures) Patch(
	ctx context.Context,
	obj client.Object,
	patch client.Patch,
	opts ...client.PatchOption,
) error {
	if err := check(c.config.OnPatch, obj); err != nil {
		return err
	}
	return c.Client.Patch(ctx, obj, patch, opts...)
}

func (c *fakeClientWithFailures) Delete(
	ctx context.Context,
	obj client.Object,
	opts ...client.DeleteOption,
) error {
	if err := check(c.config.OnDelete, obj); err != nil {
		return err
	}
	return c.Client.Delete(ctx, obj, opts...)
}

func (c *fakeClientWithFailures) Status() client.StatusWriter {
	return &statusWriterWithFailures{
		StatusWriter: c.Client.Status(),
		config:       c.config,
	}
}

type statusWriterWithFailures struct {
	client.StatusWriter
	config *FailureConfig
}

func (s *statusWriterWithFailures) Update(
	ctx context.Context,
	obj client.Object,
	opts ...client.SubResourceUpdateOption,
) error {
	if err := check(s.config.OnStatusUpdate, obj); err != nil {
		return err
	}
	return s.StatusWriter.Update(ctx, obj, opts...)
}

func (s *statusWriterWithFailures) Patch(
	ctx context.Context,
	obj client.Object,
	patch client.Patch,
	opts ...client.SubResourcePatchOption,
) error {
	if err := check(s.config.OnStatusPatch, obj); err != nil {
		return err
	}
	return s.StatusWriter.Patch(ctx, obj, patch, opts...)
}

func check[T any](hook func(T) error, arg T) error {
	if hook == nil {
		return nil
	}
	return hook(arg)
}

// Helper functions for common failure scenarios

// FailOnObjectName returns err for objects with the given name.
func FailOnObjectName(name string, err error) func(client.Object) error {
	return func(obj client.Object) error {
		if obj.GetName() == name {
			return err
		}
		return nil
	}
}

// FailOnKeyName returns err for keys with the given name.
func FailOnKeyName(name string, err error) func(client.ObjectKey) error {
	return func(key client.ObjectKey) error {
		if key.Name == name {
			return err
		}
		return nil
	}
}

// FailOnType returns err for objects of type T, e.g. FailOnType[*corev1.Pod].
func FailOnType[T client.Object](err error) func(client.Object) error {
	return func(obj client.Object) error {
		if _, ok := obj.(T); ok {
			return err
		}
		return nil
	}
}

// FailOnListType returns err for lists of type T, e.g. FailOnListType[*corev1.PodList].
func FailOnListType[T client.ObjectList](err error) func(client.ObjectList) error {
	return func(list client.ObjectList) error {
		if _, ok := list.(T); ok {
			return err
		}
		return nil
	}
}

// FailObjAfterNCalls returns an Object failure function that fails after N
// successful calls. It is safe for concurrent use.
func FailObjAfterNCalls(n int, err error) func(client.Object) error {
	var mu sync.Mutex
	count := 0
	return func(client.Object) error {
		mu.Lock()
		defer mu.Unlock()
		count++
		if count > n {
			return err
		}
		return nil
	}
}

// Common errors for testing
var (
	ErrInjected        = errors.New("injected test error")
	ErrNetworkTimeout  = errors.New("network timeout")
	ErrPermissionError = errors.New("permission denied")
)
