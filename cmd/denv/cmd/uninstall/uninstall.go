// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package uninstall

import (
	"fmt"

	"daml.com/x/denv/pkg/builtincommand"
	"daml.com/x/denv/pkg/denvconfig"
	"daml.com/x/denv/pkg/store"
	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
)

func Cmd(config *denvconfig.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <tool> <version>", string(builtincommand.UnInstall)),
		Short: "remove a tool version from the local store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			toolName := args[0]
			version, err := semver.NewVersion(args[1])
			if err != nil {
				return fmt.Errorf("invalid version argument: %w", err)
			}
			cmd.SilenceUsage = true

			if err := store.UninstallToolVersion(cmd.Context(), config, toolName, version); err != nil {
				return err
			}

			cmd.Printf("Successfully uninstalled %s %s\n", toolName, version.String())
			return nil
		},
	}
	return cmd
}
