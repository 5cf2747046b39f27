package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"cellsplit/script"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	// ScriptConfig describes language of cell-mode scripts and how they are
	// split.
	ScriptConfig struct {
		CellBreak   string   `yaml:"cell_break" validate:"required"`
		Comment     string   `yaml:"comment" validate:"required"`
		Terminator  string   `yaml:"terminator" validate:"required"`
		Openers     []string `yaml:"openers" validate:"min=1,dive,required"`
		Reentries   []string `yaml:"reentries" validate:"dive,required"`
		Unsupported []string `yaml:"unsupported" validate:"dive,required"`
		SlugLimit   int      `yaml:"slug_limit" validate:"min=1,max=255"`
		BlockIndent string   `yaml:"block_indent"`
		Strict      bool     `yaml:"strict"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Script    ScriptConfig   `yaml:"script"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// Dialect returns keyword dialect described by configuration.
func (conf *ScriptConfig) Dialect() *script.Dialect {
	return &script.Dialect{
		CellBreak:   conf.CellBreak,
		Comment:     conf.Comment,
		Terminator:  conf.Terminator,
		Openers:     conf.Openers,
		Reentries:   conf.Reentries,
		Unsupported: conf.Unsupported,
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to
// provide sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
