// internal/shared/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/obrien-tchaleu/ludo-online-go/internal/shared/constants"
)

// Config regroupe la configuration du serveur
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`

	Game struct {
		RollDelayMs        int `yaml:"rollDelayMs"`
		AutoPassDelayMs    int `yaml:"autoPassDelayMs"`
		TurnTimeoutSeconds int `yaml:"turnTimeoutSeconds"`
	} `yaml:"game"`
}

// Load lit la configuration YAML puis applique les surcharges
// d'environnement. Un fichier absent n'est pas une erreur : les
// valeurs par défaut suffisent pour tourner.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Server.Port = constants.DefaultServerPort

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = constants.DefaultServerPort
	}
	if cfg.Game.RollDelayMs <= 0 {
		cfg.Game.RollDelayMs = int(constants.RollResolveDelay / time.Millisecond)
	}
	if cfg.Game.AutoPassDelayMs <= 0 {
		cfg.Game.AutoPassDelayMs = int(constants.AutoPassDelay / time.Millisecond)
	}
	if cfg.Game.TurnTimeoutSeconds <= 0 {
		cfg.Game.TurnTimeoutSeconds = int(constants.TurnTimeout / time.Second)
	}

	return cfg, nil
}

// RollDelay retourne le délai de résolution d'un lancer
func (c *Config) RollDelay() time.Duration {
	return time.Duration(c.Game.RollDelayMs) * time.Millisecond
}

// AutoPassDelay retourne le délai avant la passe automatique sans coup
func (c *Config) AutoPassDelay() time.Duration {
	return time.Duration(c.Game.AutoPassDelayMs) * time.Millisecond
}

// TurnTimeout retourne la durée maximale d'un tour
func (c *Config) TurnTimeout() time.Duration {
	return time.Duration(c.Game.TurnTimeoutSeconds) * time.Second
}
