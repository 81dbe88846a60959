package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads variables from ./.env into the process environment.
// A missing file is not an error and existing variables are never overridden.
func LoadEnvFile() error {
	return loadEnvFile()
}

func loadEnvFile() error {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}
