// Package metadata builds the labels, annotations and selectors the operator
// stamps on objects it creates for a WorkerGroup.
package metadata

import (
	"maps"

	"sigs.k8s.io/controller-runtime/pkg/client"

	probeletv0 "github.com/probelet/probelet-operator/api/v0"
)

// WorkerLabels returns the labels of the worker named workerName. The owner's
// default labels come first and the worker name label is added on top.
func WorkerLabels(owner *probeletv0.WorkerGroup, workerName string) map[string]string {
	return MergeLabels(
		map[string]string{probeletv0.LabelWorkerName: workerName},
		owner.DefaultLabels(),
	)
}

// WorkerAnnotations returns the owner's default annotations merged with extra.
// Default annotations take precedence.
func WorkerAnnotations(owner *probeletv0.WorkerGroup, extra map[string]string) map[string]string {
	return MergeLabels(owner.DefaultAnnotations(), extra)
}

// MergeLabels merges custom labels with standard labels.
//
// Note that standard labels take precedence over custom labels to prevent users
// from overriding critical operator-managed labels.
func MergeLabels(standardLabels, customLabels map[string]string) map[string]string {
	merged := make(map[string]string, len(standardLabels)+len(customLabels))

	maps.Copy(merged, customLabels)
	maps.Copy(merged, standardLabels)

	return merged
}

// WorkerGroupSelector selects the objects created for owner.
func WorkerGroupSelector(owner *probeletv0.WorkerGroup) client.MatchingLabels {
	return client.MatchingLabels(owner.DefaultLabels())
}
