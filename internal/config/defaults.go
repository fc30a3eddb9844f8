package config

import (
	"os"
	"path/filepath"

	"transcribeasy/internal/domain"
)

// AppDirName is the application-private directory under the user home.
const AppDirName = ".transcribeasy"

// StorageRoot returns the application-private storage root.
func StorageRoot() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, AppDirName)
}

// DefaultModelDir returns the directory model files are downloaded into.
func DefaultModelDir() string {
	return filepath.Join(StorageRoot(), "models")
}

// DefaultSettings returns baseline local configuration for first launch.
func DefaultSettings() domain.Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return domain.Settings{
		ModelDir:     DefaultModelDir(),
		OutputDir:    filepath.Join(homeDir, "Documents", "Transcripts"),
		Language:     "auto",
		OutputFormat: domain.OutputFormatTxt,
	}
}
