// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package remotepuller

import (
	"context"

	"daml.com/x/denv/pkg/denvconfig"
	"daml.com/x/denv/pkg/denvconfig/denvremote"
	ociconsts "daml.com/x/denv/pkg/oci"
	"daml.com/x/denv/pkg/ociindex"
	"daml.com/x/denv/pkg/ocipuller"
	"daml.com/x/denv/pkg/simpleplatform"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
)

type RemoteOciPuller struct {
	config *denvconfig.Config
	remote *denvremote.Remote
}

var _ ocipuller.OciPuller = (*RemoteOciPuller)(nil)

func New(config *denvconfig.Config, remote *denvremote.Remote) *RemoteOciPuller {
	return &RemoteOciPuller{
		config: config,
		remote: remote,
	}
}

func NewFromRemoteConfig(config *denvconfig.Config) (*RemoteOciPuller, error) {
	remote, err := denvremote.NewFromConfig(config)
	if err != nil {
		return nil, err
	}
	return New(config, remote), nil
}

func (a *RemoteOciPuller) PullTool(ctx context.Context, toolName, tag, destPath string, platform simpleplatform.Platform) error {
	return a.pull(ctx, ociconsts.ToolRepoPrefix+toolName, tag, destPath, platform)
}

func (a *RemoteOciPuller) pull(ctx context.Context, repoName, tag, destPath string, platform simpleplatform.Platform) error {
	src, err := a.remote.Repo(repoName)
	if err != nil {
		return err
	}

	dest, err := file.New(destPath)
	if err != nil {
		return err
	}
	dest.PreservePermissions = true
	// errors out if dest already exists
	dest.DisableOverwrite = true

	opts := ocipuller.ApplyFileInfoCopyOptions(destPath)

	if nonGeneric, ok := platform.(*simpleplatform.NonGeneric); ok {
		index, _, err := ociindex.FetchIndex(ctx, a.remote, repoName, tag)
		if err != nil {
			return err
		}

		descriptor, err := ociindex.FindTargetPlatform(index.Manifests, nonGeneric)
		if err != nil {
			return err
		}

		opts.WithTargetPlatform(descriptor.Platform)
	}

	_, err = oras.Copy(ctx, src, tag, dest, tag, opts)
	return err
}
