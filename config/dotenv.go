package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// DefaultDotEnvFile is the dotenv file read at startup
const DefaultDotEnvFile = ".env"

// LoadDotEnv copies the variables declared in a dotenv file into the process
// environment. Variables already present in the environment are left untouched.
// A missing file is not an error; loaded reports whether the file was read.
func LoadDotEnv(path string) (loaded bool, err error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); exists {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return true, fmt.Errorf("failed to set %s: %w", name, err)
		}
	}
	return true, nil
}
