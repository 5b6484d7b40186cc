// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package install

import (
	"fmt"

	"daml.com/x/denv/pkg/builtincommand"
	"daml.com/x/denv/pkg/denvconfig"
	"daml.com/x/denv/pkg/store"
	"github.com/spf13/cobra"
)

func Cmd(config *denvconfig.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <tool> <version or tag>", string(builtincommand.Install)),
		Short: "install a tool version into the local store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			toolName, tag := args[0], args[1]

			cmd.Printf("resolving %s@%s...\n", toolName, tag)
			version, err := store.InstallToolVersion(cmd.Context(), config, toolName, tag)
			if err != nil {
				return err
			}

			cmd.Printf("Successfully installed %s %s\n", toolName, version.String())
			return nil
		},
	}
	return cmd
}
