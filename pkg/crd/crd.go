// Package crd builds the CustomResourceDefinition of the WorkerGroup
// resource.
package crd

import (
	"fmt"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	probeletv0 "github.com/probelet/probelet-operator/api/v0"
)

const (
	// WorkerGroupPlural is the plural resource name of WorkerGroup.
	WorkerGroupPlural = "workergroups"

	// WorkerGroupShortName is the short name usable with kubectl.
	WorkerGroupShortName = "workergroup"
)

// WorkerGroupName is the metadata name of the WorkerGroup CRD.
func WorkerGroupName() string {
	return WorkerGroupPlural + "." + probeletv0.GroupName
}

// WorkerGroup returns the CRD of the WorkerGroup resource. The schema follows
// the JSON layout of the probeletv0 types.
func WorkerGroup() *apiextensionsv1.CustomResourceDefinition {
	return &apiextensionsv1.CustomResourceDefinition{
		TypeMeta: metav1.TypeMeta{
			APIVersion: apiextensionsv1.SchemeGroupVersion.String(),
			Kind:       "CustomResourceDefinition",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name: WorkerGroupName(),
		},
		Spec: apiextensionsv1.CustomResourceDefinitionSpec{
			Group: probeletv0.GroupName,
			Names: apiextensionsv1.CustomResourceDefinitionNames{
				Plural:     WorkerGroupPlural,
				Singular:   "workergroup",
				Kind:       probeletv0.WorkerGroupKind,
				ListKind:   probeletv0.WorkerGroupKind + "List",
				ShortNames: []string{WorkerGroupShortName},
			},
			Scope: apiextensionsv1.NamespaceScoped,
			Versions: []apiextensionsv1.CustomResourceDefinitionVersion{{
				Name:    probeletv0.GroupVersion.Version,
				Served:  true,
				Storage: true,
				Schema: &apiextensionsv1.CustomResourceValidation{
					OpenAPIV3Schema: workerGroupSchema(),
				},
				Subresources: &apiextensionsv1.CustomResourceSubresources{
					Status: &apiextensionsv1.CustomResourceSubresourceStatus{},
				},
				AdditionalPrinterColumns: []apiextensionsv1.CustomResourceColumnDefinition{
					{Name: "Replicas", Type: "integer", JSONPath: ".spec.replicas"},
					{Name: "Ready", Type: "integer", JSONPath: ".status.ready_instances"},
					{Name: "Image", Type: "string", JSONPath: ".spec.image"},
					{Name: "Age", Type: "date", JSONPath: ".metadata.creationTimestamp"},
				},
			}},
		},
	}
}

// YAML renders the WorkerGroup CRD as a YAML document.
func YAML() ([]byte, error) {
	out, err := yaml.Marshal(WorkerGroup())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal WorkerGroup CRD: %w", err)
	}
	return out, nil
}

func workerGroupSchema() *apiextensionsv1.JSONSchemaProps {
	return &apiextensionsv1.JSONSchemaProps{
		Type:        "object",
		Description: "WorkerGroup manages a group of worker Pods where probes are executed.",
		Required:    []string{"spec"},
		Properties: map[string]apiextensionsv1.JSONSchemaProps{
			"apiVersion": {Type: "string"},
			"kind":       {Type: "string"},
			"metadata":   {Type: "object"},
			"spec": {
				Type:     "object",
				Required: []string{"replicas", "image"},
				Properties: map[string]apiextensionsv1.JSONSchemaProps{
					"replicas": {
						Type:        "integer",
						Format:      "int32",
						Description: "Number of workers to create.",
					},
					"image": {
						Type:        "string",
						Description: "Container image used by every worker of the group.",
					},
				},
			},
			"status": {
				Type:     "object",
				Nullable: true,
				Required: []string{"instance_names", "instances", "instances_reported_state", "ready_instances"},
				Properties: map[string]apiextensionsv1.JSONSchemaProps{
					"instance_names": {
						Type: "array",
						Items: &apiextensionsv1.JSONSchemaPropsOrArray{
							Schema: &apiextensionsv1.JSONSchemaProps{Type: "string"},
						},
					},
					"instances": {Type: "integer", Format: "int32"},
					"instances_reported_state": {
						Type: "object",
						AdditionalProperties: &apiextensionsv1.JSONSchemaPropsOrBool{
							Allows: true,
							Schema: instanceStateSchema(),
						},
					},
					"ready_instances": {Type: "integer", Format: "int32"},
				},
			},
		},
	}
}

func instanceStateSchema() *apiextensionsv1.JSONSchemaProps {
	return &apiextensionsv1.JSONSchemaProps{
		Type:     "object",
		Required: []string{"status", "last_updated"},
		Properties: map[string]apiextensionsv1.JSONSchemaProps{
			"status": {
				Type: "string",
				Enum: []apiextensionsv1.JSON{
					{Raw: []byte(`"` + string(probeletv0.InstanceReady) + `"`)},
					{Raw: []byte(`"` + string(probeletv0.InstanceNotReady) + `"`)},
				},
			},
			"last_updated": {Type: "string"},
		},
	}
}
