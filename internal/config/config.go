package config

import (
	"os"
	"path/filepath"
)

// DefaultOutputBase is where extracted messages land when the caller
// does not name an output folder.
const DefaultOutputBase = "extracted_emails"

// Config holds application configuration
type Config struct {
	// Server settings
	Host string
	Port string

	// Catalog database settings
	DBPath string

	// Extraction folder settings
	InputPath  string
	OutputBase string
}

// Default returns default configuration
func Default() *Config {
	// Get user's home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	// Use ~/.eml-extractor for data directory
	dataDir := filepath.Join(homeDir, ".eml-extractor")

	return &Config{
		Host:       "localhost",
		Port:       "8080",
		DBPath:     filepath.Join(dataDir, "extractions.db"),
		InputPath:  "./emails",
		OutputBase: DefaultOutputBase,
	}
}

// Address returns the full server address
func (c *Config) Address() string {
	return c.Host + ":" + c.Port
}

// URL returns the full server URL
func (c *Config) URL() string {
	return "http://" + c.Address()
}
