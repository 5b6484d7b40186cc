// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package exec

import (
	"errors"
	"fmt"
	"os"
	osexec "os/exec"
	"path/filepath"
	"strings"

	"daml.com/x/denv/pkg/builtincommand"
	"daml.com/x/denv/pkg/denvconfig"
	"daml.com/x/denv/pkg/session"
	"github.com/spf13/cobra"
)

func Cmd(config *denvconfig.Config) *cobra.Command {
	var descriptorFile string
	var ignoreLock bool

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s -- <command> [args...]", string(builtincommand.Exec)),
		Short: "run a command inside the activated environment",
		Args:  cobra.MinimumNArgs(1),
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

			// the activation search path exists only in the child's
			// environment, so the executable lookup cannot be left to
			// os/exec, which consults the parent's PATH
			argv0 := args[0]
			if !strings.Contains(argv0, string(os.PathSeparator)) {
				if found, ok := lookupSearchPath(res.Environment.SearchPath(), argv0); ok {
					argv0 = found
				}
			}

			child := osexec.CommandContext(cmd.Context(), argv0, args[1:]...)
			child.Env = res.Environment.Environ(os.Environ())
			child.Stdin = cmd.InOrStdin()
			child.Stdout = cmd.OutOrStdout()
			child.Stderr = cmd.ErrOrStderr()

			err = child.Run()
			var exitErr *osexec.ExitError
			if errors.As(err, &exitErr) {
				// the child's own exit code is the interesting part, not ours
				cmd.SilenceErrors = true
				os.Exit(exitErr.ExitCode())
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&descriptorFile, "file", "f", "", "path to the environment descriptor (defaults to ./"+denvconfig.DescriptorFileName+")")
	cmd.Flags().BoolVar(&ignoreLock, "ignore-lock", false, "resolve against version constraints even when a "+denvconfig.LockFileName+" is present")
	return cmd
}

// lookupSearchPath finds a regular, executable file named name in the
// activation search path, in order. Executables only available through the
// base PATH fall through to the usual os/exec lookup.
func lookupSearchPath(searchPath []string, name string) (string, bool) {
	for _, dir := range searchPath {
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err != nil || !info.Mode().IsRegular() || info.Mode().Perm()&0111 == 0 {
			continue
		}
		return candidate, true
	}
	return "", false
}
