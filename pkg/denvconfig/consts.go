// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package denvconfig

const (
	DescriptorFileName = "denv.yaml"
	LockFileName       = "denv.lock.yaml"
	DenvConfigFileName = "denv-config.yaml"
	ToolManifestName   = "tool.yaml"

	DefaultOciRegistry = "europe-docker.pkg.dev/da-images/public" // stable prod public registry as the default

	DenvUserAgentPrefix = "denv"
)
