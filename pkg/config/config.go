// Package config loads harness settings from the environment and an
// optional dotenv file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vertti/dripcheck/pkg/drip"
)

// APIVersionSuffix is the path every custom base URL must end with.
const APIVersionSuffix = "/v1"

// DefaultCustomerID is used when TEST_CUSTOMER_ID is not set.
const DefaultCustomerID = "seed-customer-1"

// Config holds the settings shared by both harnesses.
type Config struct {
	APIKey     string        `mapstructure:"drip_api_key"`
	APIURL     string        `mapstructure:"drip_api_url"`
	CustomerID string        `mapstructure:"test_customer_id"`
	Timeout    time.Duration `mapstructure:"drip_timeout"`
	Debug      bool          `mapstructure:"drip_debug"`
}

// Load reads configuration. Environment variables win over values from
// envFile; a missing envFile is not an error.
func Load(envFile string) (*Config, error) {
	v := viper.New()

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", envFile, err)
		}
	}

	v.SetDefault("drip_api_key", "")
	v.SetDefault("drip_api_url", "")
	v.SetDefault("test_customer_id", DefaultCustomerID)
	v.SetDefault("drip_timeout", "30s")
	v.SetDefault("drip_debug", false)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if strings.TrimSpace(cfg.CustomerID) == "" {
		cfg.CustomerID = DefaultCustomerID
	}
	cfg.APIURL = NormalizeBaseURL(cfg.APIURL)
	return &cfg, nil
}

// NormalizeBaseURL appends APIVersionSuffix to a custom URL that lacks it.
// An empty URL stays empty so the client default applies.
func NormalizeBaseURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	if strings.HasSuffix(u, APIVersionSuffix) {
		return u
	}
	return strings.TrimRight(u, "/") + APIVersionSuffix
}

// ClientConfig converts the settings into a drip.Config.
func (c *Config) ClientConfig() drip.Config {
	return drip.Config{
		APIKey:  c.APIKey,
		BaseURL: c.APIURL,
		Timeout: c.Timeout,
	}
}

// DisplayURL returns the URL for banners, or "(default)".
func (c *Config) DisplayURL() string {
	if c.APIURL == "" {
		return "(default)"
	}
	return c.APIURL
}
