// Package testutil provides test utilities for the Probelet Operator.
//
// Unit tests build a fake client, optionally wrapped with failure injection:
//
//	base := fake.NewClientBuilder().WithScheme(testutil.NewScheme(t)).Build()
//	c := testutil.NewFakeClientWithFailures(base, &testutil.FailureConfig{
//	    OnCreate: testutil.FailOnType[*eventsv1.Event](testutil.ErrInjected),
//	})
//
// Integration tests (build tag "integration") start envtest with the
// WorkerGroup CRD installed through SetUpEnvtest and WithCRDs.
package testutil
