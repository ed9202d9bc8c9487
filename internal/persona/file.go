package persona

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a persona definition from a YAML file.
func LoadFile(path string) (IndustryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return IndustryConfig{}, eris.Wrapf(err, "persona: read %s", path)
	}

	var cfg IndustryConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return IndustryConfig{}, eris.Wrapf(err, "persona: unmarshal %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return IndustryConfig{}, err
	}
	return cfg, nil
}

// WriteFile writes a persona definition to a YAML file.
func WriteFile(path string, cfg IndustryConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return eris.Wrapf(err, "persona: marshal %s", cfg.ID)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "persona: write %s", path)
	}
	return nil
}
