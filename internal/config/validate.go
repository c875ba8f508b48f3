package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDocker(); err != nil {
		return err
	}
	if err := c.validateTrainer(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	for key, value := range map[string]string{
		"paths.configs_dir":  c.Paths.ConfigsDir,
		"paths.datasets_dir": c.Paths.DatasetsDir,
		"paths.docker_dir":   c.Paths.DockerDir,
		"paths.logs_dir":     c.Paths.LogsDir,
		"paths.prefabs_dir":  c.Paths.PrefabsDir,
		"paths.taggers_dir":  c.Paths.TaggersDir,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	return nil
}

func (c *Config) validateDocker() error {
	if strings.ContainsAny(c.Docker.Version, " \t/:") {
		return fmt.Errorf("docker.version %q is not a valid image tag", c.Docker.Version)
	}
	if strings.ContainsAny(c.Docker.TagPrefix, " \t:") {
		return fmt.Errorf("docker.tag_prefix %q must not contain whitespace or ':'", c.Docker.TagPrefix)
	}
	switch c.Docker.PrefabPolicy {
	case PrefabSkipIfExists, PrefabAlways:
	default:
		return fmt.Errorf("docker.prefab_policy must be %q or %q, got %q", PrefabSkipIfExists, PrefabAlways, c.Docker.PrefabPolicy)
	}
	return nil
}

func (c *Config) validateTrainer() error {
	if c.Trainer.TimeoutSeconds < 0 {
		return errors.New("trainer.timeout_seconds must be >= 0")
	}
	if strings.ContainsAny(c.Python.RequirementsScript, "/\\") {
		return errors.New("python.requirements_script must be a file name inside the tagger directory")
	}
	return nil
}
