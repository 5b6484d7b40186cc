// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"encoding/json"
	"fmt"

	"daml.com/x/denv/pkg/builtincommand"
	"daml.com/x/denv/pkg/denvconfig"
	"daml.com/x/denv/pkg/session"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

func Cmd(config *denvconfig.Config) *cobra.Command {
	var descriptorFile, output string
	var ignoreLock bool

	cmd := &cobra.Command{
		Use:   string(builtincommand.Resolve),
		Short: "resolve the environment and print the activation manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			s, err := session.New(config, descriptorFile, ignoreLock)
			if err != nil {
				return err
			}
			res, err := s.Resolve()
			if err != nil {
				return err
			}

			manifest := res.Environment.Manifest()
			switch output {
			case "yaml":
				data, err := yaml.Marshal(manifest)
				if err != nil {
					return err
				}
				cmd.Print(string(data))
			case "json":
				data, err := json.MarshalIndent(manifest, "", "    ")
				if err != nil {
					return err
				}
				cmd.Println(string(data))
			default:
				return fmt.Errorf("output format not supported: %s", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&descriptorFile, "file", "f", "", "path to the environment descriptor (defaults to ./"+denvconfig.DescriptorFileName+")")
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml, json")
	cmd.Flags().BoolVar(&ignoreLock, "ignore-lock", false, "resolve against version constraints even when a "+denvconfig.LockFileName+" is present")
	return cmd
}
