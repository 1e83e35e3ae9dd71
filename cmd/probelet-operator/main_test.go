package main

import (
	"context"
	"errors"
	"os"
	"testing"

	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	probeletv0 "github.com/probelet/probelet-operator/api/v0"
	"github.com/probelet/probelet-operator/pkg/testutil"
	"github.com/probelet/probelet-operator/pkg/workergroup"
)

func TestSetupController(t *testing.T) {
	errSetup := errors.New("setup failed")

	tests := map[string]struct {
		failures  *testutil.FailureConfig
		setupErr  error
		wantSetup bool
		wantErrIs error
	}{
		"resource not installed": {
			failures: &testutil.FailureConfig{
				OnList: testutil.FailOnListType[*probeletv0.WorkerGroupList](testutil.ErrInjected),
			},
			wantSetup: false,
			wantErrIs: workergroup.ErrResourceNotInstalled,
		},
		"resource installed": {
			wantSetup: true,
		},
		"setup error surfaces": {
			setupErr:  errSetup,
			wantSetup: true,
			wantErrIs: errSetup,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			base := fake.NewClientBuilder().WithScheme(testutil.NewScheme(t)).Build()
			reader := testutil.NewFakeClientWithFailures(base, tc.failures)

			setupCalled := false
			err := setupController(context.Background(), reader, func() error {
				setupCalled = true
				return tc.setupErr
			})

			if setupCalled != tc.wantSetup {
				t.Errorf("setup called = %v, want %v", setupCalled, tc.wantSetup)
			}
			if tc.wantErrIs == nil {
				if err != nil {
					t.Errorf("setupController() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErrIs) {
				t.Errorf("setupController() error = %v, want %v", err, tc.wantErrIs)
			}
		})
	}
}

func TestReportingInstance(t *testing.T) {
	t.Run("pod name", func(t *testing.T) {
		t.Setenv("POD_NAME", "probelet-operator-7d9f-abcde")
		if got := reportingInstance(); got != "probelet-operator-7d9f-abcde" {
			t.Errorf("reportingInstance() = %q, want pod name", got)
		}
	})

	t.Run("hostname fallback", func(t *testing.T) {
		t.Setenv("POD_NAME", "")
		host, err := os.Hostname()
		if err != nil {
			t.Skipf("no hostname: %v", err)
		}
		if got := reportingInstance(); got != host {
			t.Errorf("reportingInstance() = %q, want %q", got, host)
		}
	})
}
