// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package ocipuller

import (
	"context"

	"daml.com/x/denv/pkg/oci"
	"daml.com/x/denv/pkg/simpleplatform"
	"daml.com/x/denv/pkg/utils/fileinfo"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
)

type OciPuller interface {
	PullTool(ctx context.Context, toolName, tag, destPath string, platform simpleplatform.Platform) error
}

// ApplyFileInfoCopyOptions returns an oras.CopyOptions that applies
// the fileinfo.FileInfo annotations present on a tool's layers upon copying.
// Without this, pulled tool binaries would land without their executable bit.
func ApplyFileInfoCopyOptions(rootPath string) oras.CopyOptions {
	opts := oras.DefaultCopyOptions
	defaultPostCopy := opts.PostCopy

	opts.PostCopy = func(ctx context.Context, desc ocispec.Descriptor) error {
		if defaultPostCopy != nil {
			if err := defaultPostCopy(ctx, desc); err != nil {
				return err
			}
		}
		if desc.MediaType != oci.ToolFileMediaType {
			return nil
		}

		fi, err := fileinfo.NewFromAnnotations(desc.Annotations)
		if err != nil {
			return err
		}
		return fi.Apply(rootPath)
	}
	return opts
}
