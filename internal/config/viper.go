// Package config provides Viper-backed configuration helpers.
package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/civicdatadog/civicmap/pkg/errors"
)

// PlacesAPIKeyEnv is the environment variable carrying the Places API key.
const PlacesAPIKeyEnv = "GOOGLE_API_KEY"

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	osValue := os.Getenv(key)
	viperValue := viper.GetString(key)

	// If Viper doesn't have it but OS does, return OS value
	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// PlacesAPIKey returns the configured Places API key, or
// errors.ErrAPIKeyRequired when it is not set.
func PlacesAPIKey() (string, error) {
	key := GetString(PlacesAPIKeyEnv)
	if key == "" {
		return "", errors.ErrAPIKeyRequired
	}
	return key, nil
}
