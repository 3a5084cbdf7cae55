// Package config loads and validates the JSON configuration files consumed
// at startup: app.json, database.json, logging.json. Each is read exactly
// once and treated as immutable for the lifetime of the process.
package config

import (
	"encoding/json"
	"os"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// LoadApp reads and validates app.json.
func LoadApp(path string) (AppConfig, error) {
	var cfg AppConfig
	if err := loadAndValidate(path, &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// LoadDatabase reads and validates database.json.
func LoadDatabase(path string) (DatabaseConfig, error) {
	var cfg DatabaseConfig
	if err := loadAndValidate(path, &cfg); err != nil {
		return DatabaseConfig{}, err
	}
	return cfg, nil
}

// LoadLogging reads and validates logging.json.
func LoadLogging(path string) (LoggingConfig, error) {
	var cfg LoggingConfig
	if err := loadAndValidate(path, &cfg); err != nil {
		return LoggingConfig{}, err
	}
	return cfg, nil
}

func loadAndValidate(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return newError(path, "file not found")
		}
		return newError(path, err.Error())
	}
	if err := json.Unmarshal(data, out); err != nil {
		return newError(path, "invalid json: "+err.Error())
	}
	if err := validate.Struct(out); err != nil {
		return newError(path, "schema violation: "+err.Error())
	}
	return nil
}
