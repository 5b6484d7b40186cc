// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package licenseutils

import (
	"fmt"
	"os"

	"github.com/samber/lo"
)

const ToolLicenseFilename = "LICENSE"

// CheckHasLicense verifies that a tool directory ships its license file at
// the root, which is required of everything published to the registry
func CheckHasLicense(dir string) error {
	des, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	_, ok := lo.Find(des, func(de os.DirEntry) bool {
		return de.Name() == ToolLicenseFilename && de.Type().IsRegular()
	})
	if !ok {
		return fmt.Errorf("required %s file is missing at tool root (%q)", ToolLicenseFilename, dir)
	}
	return nil
}
