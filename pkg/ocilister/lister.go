// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package ocilister

import (
	"context"
	"errors"

	"daml.com/x/denv/pkg/denvconfig/denvremote"
	ociconsts "daml.com/x/denv/pkg/oci"
	"github.com/Masterminds/semver/v3"
	"oras.land/oras-go/v2/registry/remote/errcode"
)

// ListTags lists all tags of a repo. The second return value is false when
// the repo does not exist at all.
func ListTags(ctx context.Context, client *denvremote.Remote, repoName string) ([]string, bool, error) {
	var result []string

	repo, err := client.Repo(repoName)
	if err != nil {
		return nil, false, err
	}

	err = repo.Tags(ctx, "", func(tags []string) error {
		result = append(result, tags...)
		return nil
	})
	if isErrorCode(err, errcode.ErrorCodeNameUnknown) {
		// repo doesn't even exist...
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	return result, true, nil
}

// ListToolVersions lists the published versions of a tool, each mapped to
// the floating tags (e.g. 'latest') that currently point at it
func ListToolVersions(ctx context.Context, name string, client *denvremote.Remote) (map[*semver.Version][]string, error) {
	return listSemverTags(ctx, ociconsts.ToolRepoPrefix+name, client)
}

func listSemverTags(ctx context.Context, repoName string, client *denvremote.Remote) (map[*semver.Version][]string, error) {
	versions := map[*semver.Version][]string{}

	tags, found, err := ListTags(ctx, client, repoName)
	if err != nil {
		return nil, err
	}
	if !found {
		return versions, nil
	}

	repo, err := client.Repo(repoName)
	if err != nil {
		return nil, err
	}

	digestToFloaty := map[string][]string{}
	versionToDigest := map[*semver.Version]string{}
	for _, tag := range tags {
		desc, err := repo.Resolve(ctx, tag)
		if err != nil {
			return nil, err
		}
		digest := desc.Digest.String()

		if IsFloaty(tag) {
			digestToFloaty[digest] = append(digestToFloaty[digest], tag)
		} else {
			v, _ := semver.NewVersion(tag)
			versionToDigest[v] = digest
		}
	}

	for v, digest := range versionToDigest {
		versions[v] = digestToFloaty[digest]
	}
	return versions, nil
}

// IsFloaty reports whether a tag may move between pushes, i.e. is anything
// but an exact semantic version
func IsFloaty(tag string) bool {
	v, err := semver.NewVersion(tag)
	if err != nil {
		return true
	}
	return v.String() != tag
}

// isErrorCode returns true if err is an oras Error and its Code equals to code.
func isErrorCode(err error, code string) bool {
	var ec errcode.Error
	return errors.As(err, &ec) && ec.Code == code
}
