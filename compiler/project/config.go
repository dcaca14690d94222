package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/goccy/go-yaml"
)

const (
	ConfigFileName     = "jackc.yaml"
	DefaultIncludeGlob = "**/*.jack"
)

// Config describes one build. It is read from jackc.yaml and then overridden by flags.
type Config struct {
	// Sources is a .jack file or a directory searched with Include and Exclude.
	Sources string   `yaml:"sources"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
	// Output is the directory the .vm files are written to; empty means next to each source.
	Output         string `yaml:"output"`
	Jobs           int    `yaml:"jobs"`
	SingleOperator bool   `yaml:"single_operator"`
	Trace          bool   `yaml:"trace"`
	// Golden is a directory of expected <Class>.vm files compared with every compiled unit.
	Golden string `yaml:"golden"`
	// Report is the path of the JSON build report.
	Report string `yaml:"report"`
}

func DefaultConfig() Config {
	return Config{
		Sources: ".",
		Include: []string{DefaultIncludeGlob},
		Jobs:    runtime.NumCPU(),
	}
}

// LoadConfig reads a YAML config on top of DefaultConfig. Relative paths in the file are
// resolved against the directory of the file.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse config %s: %w", path, err)
	}
	base := filepath.Dir(path)
	for _, p := range []*string{&config.Sources, &config.Output, &config.Golden, &config.Report} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	if len(config.Include) == 0 {
		config.Include = []string{DefaultIncludeGlob}
	}
	return config, nil
}

// FindConfig returns the path of jackc.yaml in dir, or "" when there is none.
func FindConfig(dir string) string {
	path := filepath.Join(dir, ConfigFileName)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}

func (c Config) Validate() error {
	if c.Jobs < 1 {
		return fmt.Errorf("jobs should be at least 1, got %d", c.Jobs)
	}
	if c.Sources == "" {
		return errors.New("no sources given")
	}
	if _, err := os.Stat(c.Sources); err != nil {
		return fmt.Errorf("sources: %w", err)
	}
	if c.Golden != "" {
		info, err := os.Stat(c.Golden)
		if err != nil {
			return fmt.Errorf("golden: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("golden: %s is not a directory", c.Golden)
		}
	}
	return nil
}
