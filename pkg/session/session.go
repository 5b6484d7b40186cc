// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package session ties the pieces of an activation together: it reads the
// descriptor in effect, snapshots the local store, applies the lockfile when
// one is present, and hands the result to the resolver.
package session

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"

	"daml.com/x/denv/pkg/catalog"
	"daml.com/x/denv/pkg/catalog/storecatalog"
	"daml.com/x/denv/pkg/denvconfig"
	"daml.com/x/denv/pkg/envdescriptor"
	"daml.com/x/denv/pkg/envlock"
	"daml.com/x/denv/pkg/resolver"
)

type Session struct {
	Config         *denvconfig.Config
	DescriptorPath string

	// IgnoreLock resolves against constraints even when a lockfile exists
	IgnoreLock bool
}

func New(config *denvconfig.Config, descriptorFlag string, ignoreLock bool) (*Session, error) {
	descriptorPath, err := denvconfig.GetDescriptorPath(descriptorFlag)
	if err != nil {
		return nil, err
	}
	return &Session{
		Config:         config,
		DescriptorPath: descriptorPath,
		IgnoreLock:     ignoreLock,
	}, nil
}

// LockPath is the lockfile location: next to the descriptor
func (s *Session) LockPath() string {
	return filepath.Join(filepath.Dir(s.DescriptorPath), denvconfig.LockFileName)
}

func (s *Session) ReadDescriptor() (*envdescriptor.Descriptor, error) {
	return envdescriptor.ReadDescriptor(s.DescriptorPath)
}

// Snapshot takes a store snapshot, narrowed to the lockfile's pins when a
// lockfile is present and not ignored
func (s *Session) Snapshot() (catalog.Snapshot, error) {
	snap, err := storecatalog.TakeSnapshot(s.Config)
	if err != nil {
		return nil, err
	}
	if s.IgnoreLock {
		return snap, nil
	}

	lock, err := envlock.ReadLock(s.LockPath())
	if errors.Is(err, fs.ErrNotExist) {
		return snap, nil
	}
	if err != nil {
		return nil, err
	}

	slog.Debug("resolving against lockfile", "path", s.LockPath())
	return envlock.NewSnapshot(lock, snap), nil
}

// Resolve runs the whole pipeline: descriptor, snapshot, resolution
func (s *Session) Resolve() (*resolver.Resolution, error) {
	descriptor, err := s.ReadDescriptor()
	if err != nil {
		return nil, err
	}
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return resolver.Resolve(descriptor, snap)
}
