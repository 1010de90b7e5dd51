package main

import (
	"fmt"

	"github.com/alnah/go-mdblog/internal/yamlutil"
)

// runConfig prints the effective configuration (file, env and flags
// merged) as YAML.
func runConfig(flags *cliFlags, env *Environment) error {
	cfg, err := loadSiteConfig(flags, env)
	if err != nil {
		return err
	}

	data, err := yamlutil.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = env.Stdout.Write(data)
	return err
}
