// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package reasoningengine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DeploymentConfig is the file form of [CreateOptions], for teams that keep
// deployment settings under version control.
type DeploymentConfig struct {
	DisplayName      string   `yaml:"display_name"`
	Description      string   `yaml:"description,omitempty"`
	Requirements     []string `yaml:"requirements,omitempty"`
	RequirementsFile string   `yaml:"requirements_file,omitempty"`
	ExtraPackages    []string `yaml:"extra_packages,omitempty"`
	GCSDirName       string   `yaml:"gcs_dir_name,omitempty"`
	RuntimeVersion   string   `yaml:"runtime_version,omitempty"`
}

// LoadDeploymentConfig reads a YAML deployment config from path.
func LoadDeploymentConfig(path string) (*DeploymentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deployment config: %w", err)
	}
	var c DeploymentConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse deployment config %q: %w", path, err)
	}
	return &c, nil
}

// CreateOptions converts the config into options for [Service.Create].
func (c *DeploymentConfig) CreateOptions() CreateOptions {
	return CreateOptions{
		DisplayName:      c.DisplayName,
		Description:      c.Description,
		Requirements:     c.Requirements,
		RequirementsFile: c.RequirementsFile,
		ExtraPackages:    c.ExtraPackages,
		GCSDirName:       c.GCSDirName,
		RuntimeVersion:   c.RuntimeVersion,
	}
}
