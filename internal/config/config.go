// This file defines the configuration structure for the application.
package config

import (
	// use Viper for loading the config.yml file.
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port     int `mapstructure:"port"`
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Research struct {
		Workers      int    `mapstructure:"workers"`
		Provider     string `mapstructure:"provider"`
		SerperAPIKey string `mapstructure:"serper_api_key"`
	} `mapstructure:"research"`
	Scheduler struct {
		CheckIntervalHours int `mapstructure:"check_interval_hours"`
	} `mapstructure:"scheduler"`
	Email EmailConfig `mapstructure:"email"`
	Import struct {
		WatchPath string `mapstructure:"watch_path"`
	} `mapstructure:"import"`
}

// EmailConfig holds the SMTP settings used for case alerts. All fields
// except the port must be set for alerts to be delivered.
type EmailConfig struct {
	SMTPHost  string `mapstructure:"smtp_host"`
	SMTPPort  int    `mapstructure:"smtp_port"`
	Sender    string `mapstructure:"sender"`
	Password  string `mapstructure:"password"`
	Recipient string `mapstructure:"recipient"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or "yaml"
	viper.AddConfigPath(".")      // looking for config in the current directory

	// --- Environment Variable Overrides ---
	// This tells Viper to look for environment variables with a "CASETRACK_"
	// prefix. e.g., CASETRACK_DATABASE_PATH overrides the `database.path` key.
	viper.SetEnvPrefix("CASETRACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("port", 8080)
	viper.SetDefault("database.path", "./casetrack.db")
	viper.SetDefault("research.workers", 1)
	viper.SetDefault("research.provider", "serper")
	viper.SetDefault("scheduler.check_interval_hours", 24)
	viper.SetDefault("email.smtp_host", "smtp.gmail.com")
	viper.SetDefault("email.smtp_port", 587)
	viper.SetDefault("import.watch_path", "")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
