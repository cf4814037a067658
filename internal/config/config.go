package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	JWT      JWTConfig
	Mail     MailConfig
	TextGen  TextGenConfig
	Dispatch DispatchConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int
}

// MailConfig holds mail gateway-specific configuration
type MailConfig struct {
	BaseURL   string
	APIKey    string
	FromEmail string
	FromName  string
	MockMail  bool
}

// TextGenConfig holds text generation API-specific configuration
type TextGenConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	MockAPI bool
}

// DispatchConfig holds campaign dispatch tuning
type DispatchConfig struct {
	WaveSize    int
	WaveDelayMS int
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read configuration
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Unmarshal configuration
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "reachpoint-crm")
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("LogLevel", "info")
	viper.SetDefault("Mail.FromEmail", "campaigns@reachpoint.io")
	viper.SetDefault("Mail.FromName", "ReachPoint")
	viper.SetDefault("Mail.MockMail", true)
	viper.SetDefault("TextGen.Model", "gpt-4o-mini")
	viper.SetDefault("TextGen.MockAPI", true)
	viper.SetDefault("Dispatch.WaveSize", 50)
	viper.SetDefault("Dispatch.WaveDelayMS", 1000)
}
