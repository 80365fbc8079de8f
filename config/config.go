package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Provider struct {
		Name      string `mapstructure:"name"` // "foursquare" or "google"
		BaseURL   string `mapstructure:"baseURL"`
		Limit     int    `mapstructure:"limit"`
		APIKeyEnv string `mapstructure:"apiKeyEnv"`
	} `mapstructure:"provider"`
	Geocoder struct {
		BaseURL string        `mapstructure:"baseURL"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"geocoder"`
	Search struct {
		DefaultRadiusKm float64 `mapstructure:"defaultRadiusKm"`
		DistanceUnit    string  `mapstructure:"distanceUnit"` // "miles" or "meters"
		MaxResults      int     `mapstructure:"maxResults"`
	} `mapstructure:"search"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	return config, nil
}
