// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package oci

type Artifact interface {
	RepoName() string
	ArtifactType() string
	FileMediaType() string
}

// ToolArtifact is a versioned tool build published under the tools/ repo namespace
type ToolArtifact struct {
	ToolName string
}

func (a *ToolArtifact) RepoName() string {
	return ToolRepoPrefix + a.ToolName
}

func (a *ToolArtifact) ArtifactType() string  { return ToolArtifactType }
func (a *ToolArtifact) FileMediaType() string { return ToolFileMediaType }

var _ Artifact = (*ToolArtifact)(nil)
