package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Path          string // build file, or directory to scan for build files
	ProjectRoot   string // defaults to the directory containing Path
	CellName      string
	CellRoots     map[string]string
	BuildFileName string
	ConfigValues  map[string]map[string]string // section -> field -> value

	LogFormat   string
	LogLevel    string
	WorkerCount int
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Path == "" {
		return nil, errors.New("Path is a required configuration field and cannot be empty")
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	return &cfg, nil
}
