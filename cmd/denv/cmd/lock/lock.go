// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package lock

import (
	"daml.com/x/denv/pkg/builtincommand"
	"daml.com/x/denv/pkg/denvconfig"
	"daml.com/x/denv/pkg/envlock"
	"daml.com/x/denv/pkg/session"
	"github.com/spf13/cobra"
)

func Cmd(config *denvconfig.Config) *cobra.Command {
	var descriptorFile string
	var check bool

	cmd := &cobra.Command{
		Use:   string(builtincommand.Lock),
		Short: "pin the resolved tool versions in " + denvconfig.LockFileName,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			// locking always resolves against the constraints, never against
			// a stale lockfile
			s, err := session.New(config, descriptorFile, true)
			if err != nil {
				return err
			}
			res, err := s.Resolve()
			if err != nil {
				return err
			}
			expected := envlock.FromResolution(res)

			if check {
				existing, err := envlock.ReadLock(s.LockPath())
				if err != nil {
					return err
				}
				if !existing.IsInSync(expected) {
					return envlock.ErrLockOutOfSync
				}
				cmd.Printf("%s is up to date\n", s.LockPath())
				return nil
			}

			if err := expected.Write(s.LockPath()); err != nil {
				return err
			}
			cmd.Printf("wrote %s\n", s.LockPath())
			return nil
		},
	}

	cmd.Flags().StringVarP(&descriptorFile, "file", "f", "", "path to the environment descriptor (defaults to ./"+denvconfig.DescriptorFileName+")")
	cmd.Flags().BoolVar(&check, "check", false, "don't write; fail if the existing lockfile is out of date")
	return cmd
}
