// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package denvconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"daml.com/x/denv/pkg/denvversion"
	"daml.com/x/denv/pkg/utils"
	"github.com/goccy/go-yaml"
)

type Config struct {
	DenvHomePath string `yaml:"-"`

	// dir containing installed tool versions: <store>/<tool>/<version>/
	StorePath string `yaml:"-"`

	StoreLockFilePath string `yaml:"-"`

	Registry         string `yaml:"registry,omitempty"`
	RegistryAuthPath string `yaml:"registry-auth-path,omitempty"`
	Insecure         bool   `yaml:"insecure,omitempty"`
}

func (c *Config) EnsureDirs() error {
	return utils.EnsureDirs(c.DenvHomePath, c.StorePath)
}

func Get() (*Config, error) {
	denvHomePath, err := getDenvHomePath()
	if err != nil {
		return nil, err
	}
	return GetWithCustomDenvHome(denvHomePath)
}

func GetWithCustomDenvHome(denvHomePath string) (*Config, error) {
	config := Config{}

	// denv-config.yaml is optional
	configFilePath := filepath.Join(denvHomePath, DenvConfigFileName)
	fileInfo, err := os.Stat(configFilePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		if fileInfo.IsDir() {
			return nil, fmt.Errorf("%q is directory and not a file", configFilePath)
		}

		bytes, err := os.ReadFile(configFilePath)
		if err != nil {
			return nil, err
		}

		if err := yaml.Unmarshal(bytes, &config); err != nil {
			return nil, err
		}
	}

	registry, ok := os.LookupEnv(OciRegistryEnvVar)
	if ok {
		config.Registry = registry
	}
	if config.Registry == "" {
		config.Registry = DefaultOciRegistry
	}

	registryAuthPath, ok := os.LookupEnv(RegistryAuthConfigPathEnvVar)
	if ok {
		config.RegistryAuthPath = registryAuthPath
	}

	insecure, ok, err := utils.BoolEnvVar(AllowInsecureRegistryEnvVar)
	if err != nil {
		return nil, err
	}
	if ok {
		config.Insecure = insecure
	}

	config.DenvHomePath = denvHomePath
	config.StorePath = filepath.Join(denvHomePath, "store")
	config.StoreLockFilePath = filepath.Join(config.StorePath, ".lock")
	return &config, nil
}

func getDenvHomePath() (string, error) {
	if v, ok := os.LookupEnv(DenvHomeEnvVar); ok {
		return v, nil
	}

	return getAppUserDataDirectory("denv")
}

func getAppUserDataDirectory(appName string) (string, error) {
	switch runtime.GOOS {
	case "windows":
		dir, ok := os.LookupEnv("APPDATA")
		if !ok {
			return "", fmt.Errorf("APPDATA environment variable is not set")
		}
		return filepath.Join(dir, appName), nil
	default:
		dir, ok := os.LookupEnv("HOME")
		if !ok {
			return "", fmt.Errorf("HOME environment variable is not set")
		}
		return filepath.Join(dir, "."+appName), nil
	}
}

// GetDescriptorPath returns the descriptor path in effect:
// the explicit flag value if non-empty, then DENV_DESCRIPTOR, then ./denv.yaml
func GetDescriptorPath(flagValue string) (string, error) {
	if flagValue != "" {
		return filepath.Abs(flagValue)
	}
	if v, ok := os.LookupEnv(DescriptorPathEnvVar); ok {
		return filepath.Abs(v)
	}
	return filepath.Abs(DescriptorFileName)
}

func GetDenvUserAgent() string {
	return DenvUserAgentPrefix + "/" + denvversion.GetDenvVersion()
}
