package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/amzn/ion-cascading-config/ionconfig"
)

// Config holds CLI-level settings. The engine itself is configured entirely
// by its record sources; this only decides where those records come from.
type Config struct {
	Dir       string
	DBURL     string
	Namespace string
}

// LoadConfig resolves settings with flags > environment > config file >
// defaults precedence.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("dir", ionconfig.DefaultDirectory)
	v.SetDefault("db_url", "")
	v.SetDefault("namespace", "")

	// Bind environment variables with IONCONFIG_ prefix
	v.SetEnvPrefix("IONCONFIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Dir:       v.GetString("dir"),
		DBURL:     v.GetString("db_url"),
		Namespace: v.GetString("namespace"),
	}

	// Flags win over everything
	if configDir != "" {
		cfg.Dir = configDir
	}
	if dbURL != "" {
		cfg.DBURL = dbURL
	}

	return cfg, nil
}
