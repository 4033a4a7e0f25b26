package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Paths are files or directories holding .hcl component declarations.
	Paths []string
	// Imports are exported-interface JSON documents from other compilation
	// units, registered before loading so child blocks can reference them.
	Imports []string

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("at least one declaration path is required")
	}
	return &cfg, nil
}
