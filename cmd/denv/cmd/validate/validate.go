// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package validate

import (
	"daml.com/x/denv/pkg/builtincommand"
	"daml.com/x/denv/pkg/denvconfig"
	"daml.com/x/denv/pkg/resolver"
	"daml.com/x/denv/pkg/session"
	"github.com/spf13/cobra"
)

func Cmd(config *denvconfig.Config) *cobra.Command {
	var descriptorFile string
	var noCatalog bool

	cmd := &cobra.Command{
		Use:   string(builtincommand.Validate),
		Short: "check the environment descriptor",
		Long: `check the environment descriptor

	validates the descriptor's schema, tool references and variable
	expressions, and verifies every tool resolves against the local store.
	with --no-catalog only the descriptor itself is checked, so it also works
	on machines where the tools aren't installed yet.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			s, err := session.New(config, descriptorFile, false)
			if err != nil {
				return err
			}

			descriptor, err := s.ReadDescriptor()
			if err != nil {
				return err
			}

			if !noCatalog {
				snap, err := s.Snapshot()
				if err != nil {
					return err
				}
				if _, err := resolver.Resolve(descriptor, snap); err != nil {
					return err
				}
			}

			cmd.Printf("%s is valid\n", s.DescriptorPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&descriptorFile, "file", "f", "", "path to the environment descriptor (defaults to ./"+denvconfig.DescriptorFileName+")")
	cmd.Flags().BoolVar(&noCatalog, "no-catalog", false, "skip checking that tools resolve against the local store")
	return cmd
}
