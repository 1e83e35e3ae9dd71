/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package v0

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ============================================================================
// WorkerGroup Spec
// ============================================================================

// WorkerGroupSpec defines the desired state of WorkerGroup.
type WorkerGroupSpec struct {
	// Replicas is the number of workers to create.
	// The max is 1 for the first version of the CRD. This is a convention
	// only and is not validated.
	Replicas int32 `json:"replicas"`

	// Image is the container image used for every worker of the group.
	Image string `json:"image"`
}

// ============================================================================
// WorkerGroup Status
// ============================================================================

// InstanceStatus is the state a worker instance reports.
// +kubebuilder:validation:Enum=Ready;NotReady
type InstanceStatus string

const (
	// InstanceReady means the instance is ready.
	InstanceReady InstanceStatus = "Ready"

	// InstanceNotReady means the instance is not ready.
	InstanceNotReady InstanceStatus = "NotReady"
)

// ReportedInstanceState is the last state observed for one worker instance.
type ReportedInstanceState struct {
	// Status of the instance, either Ready or NotReady.
	Status InstanceStatus `json:"status"`

	// LastUpdated is the RFC 3339 time the state last changed.
	LastUpdated string `json:"last_updated"`
}

// WorkerGroupStatus defines the observed state of WorkerGroup.
//
// The keys of InstancesReportedState are always a subset of InstanceNames.
type WorkerGroupStatus struct {
	// InstanceNames are the names of the running instances.
	InstanceNames []WorkerInstanceName `json:"instance_names"`

	// Instances is the number of instances.
	Instances int32 `json:"instances"`

	// InstancesReportedState is the state of each instance.
	InstancesReportedState map[WorkerInstanceName]ReportedInstanceState `json:"instances_reported_state"`

	// ReadyInstances is the number of ready instances.
	ReadyInstances int32 `json:"ready_instances"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=workergroup
// +kubebuilder:printcolumn:name="Replicas",type="integer",JSONPath=".spec.replicas"
// +kubebuilder:printcolumn:name="Ready",type="integer",JSONPath=".status.ready_instances"
// +kubebuilder:printcolumn:name="Image",type="string",JSONPath=".spec.image"

// WorkerGroup is a resource that manages a group of Worker instances (Pods).
// Workers are where the probes are going to be executed.
type WorkerGroup struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec WorkerGroupSpec `json:"spec"`

	// Status is nil until the operator has reconciled the group once.
	// +optional
	Status *WorkerGroupStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// WorkerGroupList contains a list of WorkerGroup
type WorkerGroupList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []WorkerGroup `json:"items"`
}

func init() {
	SchemeBuilder.Register(&WorkerGroup{}, &WorkerGroupList{})
}
