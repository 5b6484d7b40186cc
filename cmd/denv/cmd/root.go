// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"daml.com/x/denv/cmd/denv/cmd/activate"
	execCmd "daml.com/x/denv/cmd/denv/cmd/exec"
	"daml.com/x/denv/cmd/denv/cmd/install"
	"daml.com/x/denv/cmd/denv/cmd/lock"
	"daml.com/x/denv/cmd/denv/cmd/login"
	"daml.com/x/denv/cmd/denv/cmd/push"
	"daml.com/x/denv/cmd/denv/cmd/resolve"
	"daml.com/x/denv/cmd/denv/cmd/tools"
	"daml.com/x/denv/cmd/denv/cmd/uninstall"
	"daml.com/x/denv/cmd/denv/cmd/validate"
	"daml.com/x/denv/pkg/denvconfig"
	"daml.com/x/denv/pkg/denvversion"
	"daml.com/x/denv/pkg/logging"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

const DenvName = "denv"

func RootCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   DenvName,
		Short: "declarative developer environments",
	}

	if err := logging.InitLogging(); err != nil {
		return nil, err
	}

	config, err := denvconfig.Get()
	if err != nil {
		return nil, err
	}
	if err := config.EnsureDirs(); err != nil {
		return nil, err
	}

	cmd.AddCommand(
		activate.Cmd(config),
		execCmd.Cmd(config),
		resolve.Cmd(config),
		validate.Cmd(config),
		lock.Cmd(config),
		tools.Cmd(config),
		install.Cmd(config),
		uninstall.Cmd(config),
		login.Cmd(config),
		push.Cmd(config),
	)

	version, err := yaml.Marshal(denvversion.Get())
	if err != nil {
		return nil, err
	}
	cmd.Version = string(version)
	cmd.SetVersionTemplate("{{.Version}}")

	return cmd, nil
}
