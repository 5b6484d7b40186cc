// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package denvconfig

const envVarPrefix = "DENV_"

const (
	// DenvHomeEnvVar
	// DENV_HOME is the absolute path to the `denv` home directory
	DenvHomeEnvVar = envVarPrefix + "HOME"

	// OciRegistryEnvVar
	// DENV_REGISTRY overrides the OCI registry from which tool artifacts are downloaded
	OciRegistryEnvVar = envVarPrefix + "REGISTRY"

	// RegistryAuthConfigPathEnvVar
	// DENV_REGISTRY_AUTH overrides the OCI registry auth file used
	// Contains a path to a config file similar to docker’s config.json, which will be used to authenticate to the configured registry
	// 	default: $HOME/.docker/config.json).
	RegistryAuthConfigPathEnvVar = envVarPrefix + "REGISTRY_AUTH"

	// AllowInsecureRegistryEnvVar
	// DENV_INSECURE_REGISTRY allows an insecure registry to be used (http instead of https, and without auth)
	AllowInsecureRegistryEnvVar = envVarPrefix + "INSECURE_REGISTRY"

	// LogLevelEnvVar
	// DENV_LOG_LEVEL sets the log level for denv.
	// 	Default: info
	//  Possible values: info error warning fatal debug
	LogLevelEnvVar = envVarPrefix + "LOG_LEVEL"

	// DescriptorPathEnvVar
	// DENV_DESCRIPTOR is a path to an environment descriptor file.
	// This allows activating an environment without changing directory
	DescriptorPathEnvVar = envVarPrefix + "DESCRIPTOR"
)
