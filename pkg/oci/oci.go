// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package oci

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	ToolArtifactType  = "application/vnd.tool.artifact"
	ToolFileMediaType = "application/vnd.tool.file"
	ToolRepoPrefix    = "tools/"

	DAAnnotationPrefix          = "com.digitalasset."
	DescriptorNameAnnotation    = DAAnnotationPrefix + "name"
	DescriptorVersionAnnotation = DAAnnotationPrefix + "version"
)

// DescriptorAnnotations are required annotations to be appended onto image and index manifests.
// These will facilitate resolving "latest" floaty tags to the corresponding tool semver
type DescriptorAnnotations struct {
	Name    string
	Version *semver.Version
}

func (d DescriptorAnnotations) AppendToMap(annotations map[string]string) {
	annotations[DescriptorNameAnnotation] = d.Name
	annotations[DescriptorVersionAnnotation] = d.Version.String()
}

func DAAnnotation(annotation string) string {
	return DAAnnotationPrefix + annotation
}

func VersionFromDescriptorAnnotations(descriptorAnnotations map[string]string) (*semver.Version, error) {
	err := fmt.Errorf("descriptor missing required %q annotations", DescriptorVersionAnnotation)
	if descriptorAnnotations == nil {
		return nil, err
	}
	version, ok := descriptorAnnotations[DescriptorVersionAnnotation]
	if !ok {
		return nil, err
	}

	return semver.NewVersion(version)
}
