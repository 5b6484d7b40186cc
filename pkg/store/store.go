// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package store installs and removes tool versions in the local store.
// Mutations are guarded by a file lock so concurrent denv processes don't
// trample each other; reads go through catalog/storecatalog.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"daml.com/x/denv/pkg/denvconfig"
	"daml.com/x/denv/pkg/denvconfig/denvremote"
	ociconsts "daml.com/x/denv/pkg/oci"
	"daml.com/x/denv/pkg/ociindex"
	"daml.com/x/denv/pkg/ocipuller"
	"daml.com/x/denv/pkg/ocipuller/remotepuller"
	"daml.com/x/denv/pkg/simpleplatform"
	"daml.com/x/denv/pkg/toolmanifest"
	"daml.com/x/denv/pkg/utils"
	"github.com/Masterminds/semver/v3"
)

// InstallToolVersion pulls a tool from the registry into the local store.
// The tag may be floating (e.g. 'latest'); it is resolved to an exact
// version first, so repeated installs of the same version are no-ops.
func InstallToolVersion(ctx context.Context, config *denvconfig.Config, toolName, tag string) (*semver.Version, error) {
	remote, err := denvremote.NewFromConfig(config)
	if err != nil {
		return nil, err
	}

	version, err := ociindex.ResolveTag(ctx, remote, &ociconsts.ToolArtifact{ToolName: toolName}, tag)
	if err != nil {
		return nil, err
	}

	puller := remotepuller.New(config, remote)
	err = utils.WithStoreLock(ctx, config.StoreLockFilePath, func() error {
		return installToolVersion(ctx, config, puller, toolName, version)
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

func installToolVersion(ctx context.Context, config *denvconfig.Config, puller ocipuller.OciPuller, toolName string, version *semver.Version) error {
	dest := filepath.Join(config.StorePath, toolName, version.String())
	installed, err := utils.DirExists(dest)
	if err != nil {
		return err
	}
	if installed {
		slog.Info("tool version already installed", "tool", toolName, "version", version.String())
		return nil
	}

	if err := utils.EnsureDirs(filepath.Dir(dest)); err != nil {
		return err
	}

	// pull into a staging dir next to the final location, then rename, so
	// a failed pull never leaves a half-installed tool behind
	tmpDir, deleteFn, err := utils.MkdirTemp(config.StorePath, ".install-")
	if err != nil {
		return err
	}
	defer func() { _ = deleteFn() }()

	if err := puller.PullTool(ctx, toolName, version.String(), tmpDir, simpleplatform.CurrentPlatform()); err != nil {
		return err
	}

	manifest, err := toolmanifest.ReadToolManifest(filepath.Join(tmpDir, denvconfig.ToolManifestName))
	if err != nil {
		return fmt.Errorf("pulled tool has no usable manifest: %w", err)
	}
	pulledVersion := manifest.Spec.Version.Value()
	if manifest.Spec.Name != toolName || !pulledVersion.Equal(version) {
		return fmt.Errorf("pulled tool manifest declares %s@%s, expected %s@%s",
			manifest.Spec.Name, pulledVersion.String(), toolName, version.String())
	}

	return os.Rename(tmpDir, dest)
}

// UninstallToolVersion removes an installed tool version from the store
func UninstallToolVersion(ctx context.Context, config *denvconfig.Config, toolName string, version *semver.Version) error {
	return utils.WithStoreLock(ctx, config.StoreLockFilePath, func() error {
		dest := filepath.Join(config.StorePath, toolName, version.String())
		installed, err := utils.DirExists(dest)
		if err != nil {
			return err
		}
		if !installed {
			return fmt.Errorf("tool %s@%s is not installed", toolName, version.String())
		}

		if err := os.RemoveAll(dest); err != nil {
			return err
		}

		// drop the tool dir too once its last version is gone
		toolDir := filepath.Dir(dest)
		entries, err := os.ReadDir(toolDir)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return os.Remove(toolDir)
		}
		return nil
	})
}
