// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"daml.com/x/denv/pkg/builtincommand"
	"daml.com/x/denv/pkg/catalog"
	"daml.com/x/denv/pkg/catalog/storecatalog"
	"daml.com/x/denv/pkg/denvconfig"
	"daml.com/x/denv/pkg/denvconfig/denvremote"
	"daml.com/x/denv/pkg/ocilister"
	"daml.com/x/denv/pkg/session"
	"daml.com/x/denv/pkg/toolversions"
	"github.com/Masterminds/semver/v3"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func Cmd(config *denvconfig.Config) *cobra.Command {
	var descriptorFile, output string
	var remoteToo bool

	cmd := &cobra.Command{
		Use:   string(builtincommand.Tools),
		Short: "show versions of the environment's tools",
		Long: `show versions of the environment's tools

	for every tool the descriptor declares, lists the locally installed
	versions and marks the one the environment currently resolves to.
	with --remote, versions published to the registry are listed too.
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

			snap, err := storecatalog.TakeSnapshot(config)
			if err != nil {
				return err
			}

			// the active versions are a nice-to-have here: an environment
			// that doesn't resolve still has installed versions worth showing
			active := map[string]*semver.Version{}
			if res, err := s.Resolve(); err != nil {
				slog.Debug("environment does not resolve", "err", err.Error())
			} else {
				for _, t := range res.Tools {
					active[t.Name] = t.Version
				}
			}

			var client *denvremote.Remote
			if remoteToo {
				client, err = denvremote.NewFromConfig(config)
				if err != nil {
					return err
				}
			}

			byTool := map[string]toolversions.Versions{}
			for _, ref := range descriptor.Spec.Tools {
				installed := lo.FilterMap(snap.Tools(), func(t *catalog.Tool, _ int) (*semver.Version, bool) {
					return t.Version, t.Name == ref.Name
				})

				remote := map[*semver.Version][]string{}
				if remoteToo {
					remote, err = ocilister.ListToolVersions(cmd.Context(), ref.Name, client)
					if err != nil {
						return err
					}
				}

				byTool[ref.Name] = toolversions.New(active[ref.Name], installed, remote)
			}

			switch output {
			case "table":
				for _, ref := range descriptor.Spec.Tools {
					cmd.Println(ref.Name)
					cmd.Println(byTool[ref.Name].Table())
				}
			case "json":
				data, err := json.MarshalIndent(byTool, "", "    ")
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
	cmd.Flags().BoolVarP(&remoteToo, "remote", "A", false, "display remote versions")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: json, table")
	return cmd
}
