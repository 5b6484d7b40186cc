// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"daml.com/x/denv/pkg/denvconfig"
	"daml.com/x/denv/pkg/denvconfig/denvremote"
	"daml.com/x/denv/pkg/licenseutils"
	ociconsts "daml.com/x/denv/pkg/oci"
	"daml.com/x/denv/pkg/ociindex"
	"daml.com/x/denv/pkg/ocilister"
	"daml.com/x/denv/pkg/ocipusher"
	"daml.com/x/denv/pkg/simpleplatform"
	"daml.com/x/denv/pkg/toolmanifest"
	"daml.com/x/denv/pkg/utils"
	"github.com/Masterminds/semver/v3"
	"github.com/fatih/color"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	v1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/samber/lo"
	"oras.land/oras-go/v2/errdef"
)

type Config struct {
	Name                   string
	Platforms              map[simpleplatform.Platform]string
	Version                *semver.Version
	DryRun, IncludeGitInfo bool
	Annotations            map[string]string
	ExtraTags              []string

	Registry     string
	AuthFilePath string
	Insecure     bool
}

func (config *Config) RequiredAnnotations() ociconsts.DescriptorAnnotations {
	return ociconsts.DescriptorAnnotations{
		Name:    config.Name,
		Version: config.Version,
	}
}

func (config *Config) indexOpts(tag string, descriptors []v1.Descriptor) ociindex.Opts {
	return ociindex.Opts{
		Artifact:            &ociconsts.ToolArtifact{ToolName: config.Name},
		Tag:                 tag,
		Manifests:           descriptors,
		ExtraAnnotations:    config.Annotations,
		RequiredAnnotations: config.RequiredAnnotations(),
	}
}

type Publisher struct {
	config  *Config
	printer utils.RawPrinter
}

func New(config *Config, printer utils.RawPrinter) *Publisher {
	return &Publisher{config: config, printer: printer}
}

// Publish pushes one tool image per platform plus an index tying them
// together under the version tag
func (p *Publisher) Publish(ctx context.Context) error {
	pushOps, err := p.prepareTools(ctx)
	if err != nil {
		return err
	}

	if p.config.DryRun {
		p.printer.Println("Skipping push due to --dry-run")
		return nil
	}

	if p.config.Registry == "" {
		return fmt.Errorf("--registry must be provided when not in dry-run mode")
	}

	client, err := denvremote.New(p.config.Registry, p.config.AuthFilePath, p.config.Insecure)
	if err != nil {
		return err
	}

	// skip pushing both index and platforms' images if index already exists
	existingVersions, err := ocilister.ListToolVersions(ctx, p.config.Name, client)
	if err != nil {
		return err
	}
	alreadyExists := lo.Contains(lo.Map(lo.Keys(existingVersions), func(v *semver.Version, _ int) string {
		return v.String()
	}), p.config.Version.String())

	if alreadyExists {
		p.printer.Println("skipped pushing because tool's index already exists in remote")
	} else {
		var descriptors []v1.Descriptor
		for _, pushOp := range pushOps {
			desc, err := p.push(ctx, client, pushOp)
			if err != nil {
				return err
			}
			switch platform := pushOp.Platform().(type) {
			case *simpleplatform.NonGeneric:
				desc.Platform = platform.ToOras()
			case *simpleplatform.Generic:
			default:
				return fmt.Errorf("unknown platform type %t", platform)
			}
			descriptors = append(descriptors, *desc)
		}
		coloredDest := color.GreenString(fmt.Sprintf("%s/%s", p.config.Name, p.config.Version.String()))
		p.printer.Println("📖 Pushing index " + coloredDest)
		tag := p.config.Version.String()

		indexDesc, err := ociindex.PushIndex(ctx, client, p.config.indexOpts(tag, descriptors))
		if err != nil {
			return err
		}
		descriptorJson, err := json.MarshalIndent(indexDesc, "", "  ")
		if err != nil {
			return err
		}
		p.printer.Printf("\n%s\n", string(descriptorJson))
		p.printer.Println("successfully published index " + coloredDest)
	}

	if len(p.config.ExtraTags) > 0 {
		p.printer.Println("pushing extra tags...")
		err := ociindex.Tag(ctx, client, &ociconsts.ToolArtifact{ToolName: p.config.Name}, p.config.Version, p.config.ExtraTags)
		if err != nil {
			return err
		}
	}

	return nil
}

func (p *Publisher) prepareTools(ctx context.Context) ([]*ocipusher.PushOperation, error) {
	var pushOps []*ocipusher.PushOperation
	for platform, dir := range p.config.Platforms {
		pushOp, err := p.prepareTool(ctx, platform, dir)
		if err != nil {
			return nil, err
		}

		pushOps = append(pushOps, pushOp)
	}
	return pushOps, nil
}

func (p *Publisher) prepareTool(ctx context.Context, platform simpleplatform.Platform, dir string) (*ocipusher.PushOperation, error) {
	p.printer.Printf("📦 Validating %q tool manifest...\n", platform.String())
	if err := p.validate(dir); err != nil {
		return nil, err
	}
	p.printer.Printf("Tool manifest is valid ✅\n")
	p.printer.Println()

	p.printer.Printf("📦 Checking %q includes license file...\n", platform.String())
	if err := licenseutils.CheckHasLicense(dir); err != nil {
		return nil, err
	}
	p.printer.Printf("License file included ✅\n")
	p.printer.Println()

	p.printer.Println("Content:")
	if err := p.displayContent(dir); err != nil {
		return nil, err
	}
	p.printer.Println()
	return p.prepare(ctx, platform, dir)
}

// validate checks the tool directory ships a manifest agreeing with the
// name and version being published, and that the declared paths exist
func (p *Publisher) validate(dir string) error {
	manifest, err := toolmanifest.ReadToolManifest(filepath.Join(dir, denvconfig.ToolManifestName))
	if err != nil {
		return err
	}

	if manifest.Spec.Name != p.config.Name {
		return fmt.Errorf("tool manifest declares name %q, publishing as %q", manifest.Spec.Name, p.config.Name)
	}
	version := manifest.Spec.Version.Value()
	if !version.Equal(p.config.Version) {
		return fmt.Errorf("tool manifest declares version %q, publishing as %q", version.String(), p.config.Version.String())
	}

	declaredPaths := map[string]string{"bin": manifest.Spec.Bin}
	maps.Copy(declaredPaths, manifest.Spec.Paths)
	for name, rel := range declaredPaths {
		target := filepath.Join(dir, rel)
		exists, err := utils.DirExists(target)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("declared path %q (%s) does not exist in %q", name, rel, dir)
		}
		if !withinRoot(target, dir) {
			return fmt.Errorf("declared path %q (%s) points outside the tool root", name, rel)
		}
	}

	return nil
}

func (p *Publisher) prepare(ctx context.Context, platform simpleplatform.Platform, dir string) (*ocipusher.PushOperation, error) {
	annotations := maps.Clone(p.config.Annotations)
	if p.config.IncludeGitInfo {
		gitAnnotations, err := collectGitAnnotations()
		if err != nil {
			return nil, err
		}
		maps.Copy(annotations, gitAnnotations)
	}

	opts := ocipusher.Opts{
		Artifact:            &ociconsts.ToolArtifact{ToolName: p.config.Name},
		RawTag:              p.config.Version.String(),
		Dir:                 dir,
		RequiredAnnotations: p.config.RequiredAnnotations(),
		ExtraAnnotations:    annotations,
		Platform:            platform,
	}

	pushOp, err := ocipusher.New(ctx, opts)
	if err != nil {
		if errors.Is(err, errdef.ErrSizeExceedsLimit) {
			p.printer.PrintErrln(`Failed to construct OCI manifest due to size limit.
Consider reducing the number of files at the root by moving them to subdirectories`)
		}
		return nil, err
	}

	return pushOp, nil
}

func (p *Publisher) push(ctx context.Context, client *denvremote.Remote, pushOp *ocipusher.PushOperation) (*v1.Descriptor, error) {
	coloredDest := color.GreenString(pushOp.Destination(client.Registry))

	p.printer.Printf("Pushing %q...\n", coloredDest)
	descriptor, err := pushOp.Do(ctx, client)
	if err != nil {
		return nil, err
	}
	descriptorJson, err := json.MarshalIndent(descriptor, "", "  ")
	if err != nil {
		return nil, err
	}
	p.printer.Printf("\n%s\n", string(descriptorJson))
	p.printer.Println("successfully published " + coloredDest)
	return descriptor, nil
}

func collectGitAnnotations() (map[string]string, error) {
	r, err := git.PlainOpenWithOptions(".", &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	head, err := r.Head()
	if err != nil {
		return nil, err
	}

	result := map[string]string{
		"git.commit": head.Hash().String(),
	}

	tag, err := r.TagObject(head.Hash())
	if err == nil {
		result["git.tag"] = tag.Name
	} else if !errors.Is(err, plumbing.ErrObjectNotFound) {
		return nil, err
	}

	return result, nil
}

func (p *Publisher) displayContent(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		var ftype string
		switch {
		case d.Type()&os.ModeSymlink == os.ModeSymlink:
			ftype = "symlink"
			if err := checkSymlinkWithinRoot(dir, path); err != nil {
				return err
			}
		case d.IsDir():
			ftype = "dir"
		default:
			ftype = "file"
		}
		p.printer.Printf("%s %s %s\n",
			color.CyanString(path),
			color.YellowString(ftype),
			color.MagentaString("%d", info.Size()),
		)

		return nil
	})
}

func checkSymlinkWithinRoot(dir, symlink string) error {
	resolved, err := filepath.EvalSymlinks(symlink)
	if err != nil {
		return fmt.Errorf("failed to resolve symlink %s: %w", symlink, err)
	}

	resolvedAbs, err := filepath.Abs(resolved)
	if err != nil {
		return err
	}
	if !withinRoot(resolvedAbs, dir) {
		return fmt.Errorf("symlink points outside the root: %s -> %s", symlink, resolvedAbs)
	}

	return nil
}

func withinRoot(target, root string) bool {
	if target == root {
		return true
	}
	return strings.HasPrefix(target, root+string(os.PathSeparator))
}
