package config

import (
	"fmt"

	"github.com/ml2hw/ml2hw/util"
	"gopkg.in/yaml.v2"
)

// ProjectFileName is the name under which the project configuration is
// persisted inside the output directory.
const ProjectFileName = "ml2hw_config.yml"

// WriterConfig carries the per-generation toggles. It is threaded
// explicitly into every writer call; there is no ambient state.
type WriterConfig struct {
	Namespace       string `yaml:"namespace"`
	WriteWeightsTxt bool   `yaml:"write_weights_txt"`
	WriteTar        bool   `yaml:"write_tar"`
	TraceOutput     bool   `yaml:"trace_output"`
	TBOutputStream  string `yaml:"tb_output_stream"`
}

// ProjectConfig describes one generated project.
type ProjectConfig struct {
	ProjectName      string       `yaml:"project_name"`
	OutputDir        string       `yaml:"output_dir"`
	Part             string       `yaml:"part"`
	ClockPeriod      int          `yaml:"clock_period"`
	ClockUncertainty string       `yaml:"clock_uncertainty"`
	Version          string       `yaml:"version"`
	MaximumSize      int          `yaml:"maximum_size"`
	IOType           string       `yaml:"io_type"`
	PipelineStyle    string       `yaml:"pipeline_style"`
	PipelineII       int          `yaml:"pipeline_ii"`
	Stamp            string       `yaml:"stamp"`
	Writer           WriterConfig `yaml:"writer"`
}

// NewProjectConfig returns the initial configuration for a new project,
// filling in the device defaults from the tool configuration.
func NewProjectConfig(name, outputDir string) ProjectConfig {
	tool := GetConfig()
	return ProjectConfig{
		ProjectName:      name,
		OutputDir:        outputDir,
		Part:             tool.DefaultPart,
		ClockPeriod:      tool.DefaultClockPeriod,
		ClockUncertainty: "27%",
		Version:          "1.0.0",
		MaximumSize:      4096,
		IOType:           "io_parallel",
		PipelineStyle:    "pipeline",
		Writer: WriterConfig{
			WriteWeightsTxt: true,
			TBOutputStream:  "both",
		},
	}
}

// Validate checks the fields the writers depend on.
func (c *ProjectConfig) Validate() error {
	if c.ProjectName == "" {
		return fmt.Errorf("project has no name")
	}
	switch c.IOType {
	case "io_parallel", "io_stream":
	default:
		return fmt.Errorf("unknown io_type '%s'", c.IOType)
	}
	switch c.PipelineStyle {
	case "", "pipeline", "dataflow":
	default:
		return fmt.Errorf("unknown pipeline_style '%s'", c.PipelineStyle)
	}
	return nil
}

// LoadProject reads a project configuration from a YAML file.
func LoadProject(file string) (ProjectConfig, error) {
	var cfg ProjectConfig
	data, err := util.ReadFile(file)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse project config `%s`: %w", file, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveProject writes a project configuration to a YAML file.
func SaveProject(file string, cfg ProjectConfig) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	return util.WriteFile(file, data)
}
