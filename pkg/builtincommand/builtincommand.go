// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package builtincommand

type BuiltinCommand string

const (
	Activate  BuiltinCommand = "activate"
	Exec      BuiltinCommand = "exec"
	Resolve   BuiltinCommand = "resolve"
	Validate  BuiltinCommand = "validate"
	Lock      BuiltinCommand = "lock"
	Tools     BuiltinCommand = "tools"
	Install   BuiltinCommand = "install"
	UnInstall BuiltinCommand = "uninstall"
	Login     BuiltinCommand = "login"
	Push      BuiltinCommand = "push"
)

var BuiltinCommands = []BuiltinCommand{
	Activate, Exec, Resolve, Validate, Lock, Tools, Install, UnInstall, Login, Push,
}
