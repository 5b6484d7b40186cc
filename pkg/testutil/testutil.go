// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"daml.com/x/denv/pkg/denvconfig"
	"daml.com/x/denv/pkg/denvconfig/denvremote"
	ociconsts "daml.com/x/denv/pkg/oci"
	"daml.com/x/denv/pkg/ociindex"
	"daml.com/x/denv/pkg/ocipusher"
	"daml.com/x/denv/pkg/simpleplatform"
	"daml.com/x/denv/pkg/utils"
	"github.com/Masterminds/semver/v3"
	"github.com/google/go-containerregistry/pkg/registry"
	v1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"oras.land/oras-go/v2/registry/remote/auth"
)

// TestdataPath gives absolute path within the common 'testdata'
func TestdataPath(t *testing.T, path ...string) string {
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)

	p := []string{filepath.Dir(file), "testdata"}
	p = append(p, path...)
	return filepath.Join(p...)
}

// PushTool pushes a tool directory to the test registry as a generic
// platform image plus the index pointing at it
func PushTool(t *testing.T, ctx context.Context, registry *httptest.Server, toolName, tag, pathToTool string) {
	r := getRemote(registry)
	v, err := semver.NewVersion(tag)
	require.NoError(t, err)
	requiredAnnotations := ociconsts.DescriptorAnnotations{
		Name:    toolName,
		Version: v,
	}
	opts := ocipusher.Opts{
		Artifact:            &ociconsts.ToolArtifact{ToolName: toolName},
		RawTag:              tag,
		Dir:                 pathToTool,
		RequiredAnnotations: requiredAnnotations,
		ExtraAnnotations:    map[string]string{},
		Platform:            &simpleplatform.Generic{},
	}
	pushOp, err := ocipusher.New(ctx, opts)
	require.NoError(t, err)
	desc, err := pushOp.Do(ctx, r)
	require.NoError(t, err)

	indexOpts := ociindex.Opts{
		Artifact:            &ociconsts.ToolArtifact{ToolName: toolName},
		Tag:                 tag,
		Manifests:           []v1.Descriptor{*desc},
		ExtraAnnotations:    map[string]string{},
		RequiredAnnotations: requiredAnnotations,
	}
	_, err = ociindex.PushIndex(ctx, r, indexOpts)
	require.NoError(t, err)
}

func getRemote(registry *httptest.Server) *denvremote.Remote {
	prefix := "http://"
	insecure := strings.HasPrefix(registry.URL, prefix)
	if !insecure {
		prefix = "https://"
	}
	return denvremote.NewWithCustomClient(strings.TrimPrefix(registry.URL, prefix), &auth.Client{Client: registry.Client()}, insecure)
}

func StartRegistry(t *testing.T) (client *denvremote.Remote, reg *httptest.Server) {
	reg = httptest.NewServer(registry.New())
	t.Cleanup(func() { reg.Close() })
	regUrl := strings.TrimPrefix(reg.URL, "http://")

	t.Setenv(denvconfig.OciRegistryEnvVar, regUrl)
	t.Setenv(denvconfig.RegistryAuthConfigPathEnvVar, TestdataPath(t, "empty-docker-config.json"))
	t.Setenv(denvconfig.AllowInsecureRegistryEnvVar, "true")

	return getRemote(reg), reg
}

type CommonSetupSuite struct {
	suite.Suite
}

func (suite *CommonSetupSuite) SetupTest() {
	// randomize DENV_HOME before every test so tests never share the
	// default ~/.denv store
	tmpDenvHome, deleteFn, err := utils.MkdirTemp("", "")
	suite.Require().NoError(err)
	suite.T().Setenv(denvconfig.DenvHomeEnvVar, tmpDenvHome)
	suite.T().Cleanup(func() {
		_ = deleteFn()
	})
}

func Context(t *testing.T) context.Context {
	ctx, stopFn := context.WithCancel(context.Background())
	t.Cleanup(stopFn)
	return ctx
}
