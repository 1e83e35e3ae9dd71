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

// Package v0 defines the API types for the Probelet Operator.
//
// This package contains the Go type definitions for the Custom Resources in the
// probelet.dev API group, together with the scheme registration and DeepCopy
// methods the controller-runtime client needs.
//
// # Custom Resources
//
//   - WorkerGroup: A group of Worker instances (Pods). Workers are where probes
//     are executed. Users declare the number of replicas and the image; the
//     operator creates the Pods and reports what it observed in the status.
//
// # Resource Hierarchy
//
//	WorkerGroup
//	└── Pod (one per worker instance, owned by the WorkerGroup)
//
// # Wire Format
//
// The status sub-resource keeps the snake_case field names of the first
// published schema (instance_names, instances_reported_state, ...). They are
// part of the compatibility contract and must not be renamed.
//
// # Versioning
//
// This is the v0 version. The API is in early development and may change in
// backward-incompatible ways.
package v0
