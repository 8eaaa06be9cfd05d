package config

import (
	"fmt"
	"os"
	"path"

	"github.com/mitchellh/go-homedir"
	"github.com/ml2hw/ml2hw/log"
	"github.com/ml2hw/ml2hw/util"
	"gopkg.in/yaml.v2"
)

// Config holds the user-level tool configuration.
type Config struct {
	DefaultPart        string `yaml:"default_part"`
	DefaultClockPeriod int    `yaml:"default_clock_period"`
}

var config *Config

const configFileName string = "config.yaml"

func getConfigDir() (string, error) {
	if configDir, ok := os.LookupEnv("ML2HW_CONFIG_DIR"); ok {
		return configDir, nil
	}

	if xdgConfigHome, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		return path.Join(xdgConfigHome, "ml2hw"), nil
	}

	homeDir, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("unable to locate the configuration directory: %w", err)
	}
	return path.Join(homeDir, ".config", "ml2hw"), nil
}

func loadConfiguration() Config {
	config := Config{
		DefaultPart:        "xcvu13p-flga2577-2-e",
		DefaultClockPeriod: 5,
	}

	configDir, err := getConfigDir()
	if err != nil {
		log.Debug("Unable to find the ml2hw config directory. Using default configuration\n")
		return config
	}

	configFilePath := path.Join(configDir, configFileName)
	data, err := util.ReadFile(configFilePath)
	if err != nil {
		log.Debug("No configuration file at `%s`. Using default configuration\n", configFilePath)
		return config
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		log.Debug("Error reading configuration file at `%s`: `%s`. Using default configuration\n", configFilePath, err)
		return config
	}

	log.Debug("Loaded configuration from `%s`\n", configFilePath)
	log.Debug("Running with configuration: %+v\n", config)
	return config
}

// GetConfig returns the tool configuration, loading it on first use.
func GetConfig() Config {
	if config == nil {
		loadedConfig := loadConfiguration()
		config = &loadedConfig
	}

	return *config
}
