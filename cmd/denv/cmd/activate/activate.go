// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package activate

import (
	"daml.com/x/denv/pkg/activation"
	"daml.com/x/denv/pkg/builtincommand"
	"daml.com/x/denv/pkg/denvconfig"
	"daml.com/x/denv/pkg/session"
	"github.com/spf13/cobra"
)

func Cmd(config *denvconfig.Config) *cobra.Command {
	var descriptorFile, format string
	var ignoreLock bool

	cmd := &cobra.Command{
		Use:   string(builtincommand.Activate),
		Short: "print a shell script that activates the environment",
		Long: `print a shell script that activates the environment

	meant to be evaluated by the calling shell, e.g.:
		eval "$(denv activate)"
	or for fish:
		denv activate --format fish | source

	when activation fails, nothing is printed to stdout and the exit code is non-zero.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := activation.ParseFormat(format)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			s, err := session.New(config, descriptorFile, ignoreLock)
			if err != nil {
				return err
			}
			res, err := s.Resolve()
			if err != nil {
				return err
			}

			script, err := res.Environment.Render(f)
			if err != nil {
				return err
			}
			cmd.Print(script)
			return nil
		},
	}

	cmd.Flags().StringVarP(&descriptorFile, "file", "f", "", "path to the environment descriptor (defaults to ./"+denvconfig.DescriptorFileName+")")
	cmd.Flags().StringVar(&format, "format", string(activation.FormatSh), "output format: sh, fish, dotenv")
	cmd.Flags().BoolVar(&ignoreLock, "ignore-lock", false, "resolve against version constraints even when a "+denvconfig.LockFileName+" is present")
	return cmd
}
