package config

import (
	"fmt"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DataDriverFile   = "file"
	DataDriverSQLite = "sqlite"
)

type Config struct {
	Data   DataConfig   `mapstructure:"data"`
	Export ExportConfig `mapstructure:"export"`
	Covers CoversConfig `mapstructure:"covers"`
}

type DataConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=file sqlite"`
	Path   string `mapstructure:"path" validate:"required"`
}

type ExportConfig struct {
	Language        string `mapstructure:"language" validate:"oneof=en zh"`
	OutputDirectory string `mapstructure:"output_directory"`
}

type CoversConfig struct {
	Directory         string `mapstructure:"directory"`
	GoogleBooksAPIKey string `mapstructure:"google_books_api_key"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/klip")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("data.driver", DataDriverFile)
	v.SetDefault("data.path", filepath.Join("data", "highlights.json"))
	v.SetDefault("export.language", "en")
	v.SetDefault("export.output_directory", ".")
	v.SetDefault("covers.directory", "covers")

	// Bind the Google Books API key to an environment variable only (not
	// from the config file).
	if err := v.BindEnv("covers.google_books_api_key", "GOOGLE_BOOKS_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GOOGLE_BOOKS_API_KEY environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
