package engine

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"isogrid-server/internal/domain"
)

// Config хранит параметры запуска движка
type Config struct {
	// Seed - мастер-зерно. Используется для процедурных уровней и ID сессий.
	Seed int64 `yaml:"seed"`

	Port string `yaml:"port"`

	// TickRate - частота фиксированного шага симуляции (тиков в секунду).
	TickRate int `yaml:"tick_rate"`

	// LevelsDir - каталог YAML-уровней. Пусто = встроенные уровни.
	LevelsDir  string `yaml:"levels_dir"`
	StartLevel int    `yaml:"start_level"`

	// JournalDir - куда сохранять журналы ввода при остановке. Пусто = не сохранять.
	JournalDir string `yaml:"journal_dir"`

	// Bots - сколько headless-агентов запустить вместе с сервером.
	Bots int `yaml:"bots"`

	Log LogConfig `yaml:"log"`
	Sim SimConfig `yaml:"sim"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SimConfig - числовые параметры симуляции.
type SimConfig struct {
	PlayerSpeed   float64 `yaml:"player_speed"`
	WolfSpeed     float64 `yaml:"wolf_speed"`
	BiteDamage    int     `yaml:"bite_damage"`
	BiteDuration  float64 `yaml:"bite_duration"` // секунды
	PursuitRadius float64 `yaml:"pursuit_radius"`
}

// NewConfig создает конфиг по умолчанию (случайный сид)
func NewConfig() Config {
	return Config{
		Seed:       time.Now().UnixNano(),
		Port:       "8080",
		TickRate:   domain.DefaultTickRate,
		StartLevel: 0,
		Log:        LogConfig{Level: "info", Format: "text"},
		Sim:        DefaultSimConfig(),
	}
}

func DefaultSimConfig() SimConfig {
	return SimConfig{
		PlayerSpeed:   domain.PlayerSpeed,
		WolfSpeed:     domain.WolfSpeed,
		BiteDamage:    domain.BiteDamage,
		BiteDuration:  domain.BiteDuration,
		PursuitRadius: domain.PursuitSearchRadius,
	}
}

// LoadConfig читает YAML поверх значений по умолчанию. Пустой путь - только defaults + env.
func LoadConfig(path string) (Config, error) {
	cfg := NewConfig()
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv накладывает переменные окружения (ISO_PORT, ISO_SEED, LOG_LEVEL, LOG_FORMAT).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("ISO_PORT"); ok && v != "" {
		c.Port = v
	}
	if v, ok := lookup("ISO_SEED"); ok && v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("ISO_SEED: %w", err)
		}
		c.Seed = seed
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok && v != "" {
		c.Log.Format = v
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.TickRate <= 0 || c.TickRate > 240 {
		errs = append(errs, fmt.Errorf("tick_rate %d out of range 1..240", c.TickRate))
	}
	if c.Bots < 0 {
		errs = append(errs, fmt.Errorf("bots must be >= 0, got %d", c.Bots))
	}
	if c.Sim.PlayerSpeed <= 0 || c.Sim.WolfSpeed <= 0 {
		errs = append(errs, errors.New("speeds must be positive"))
	}
	if c.Sim.BiteDamage < 0 {
		errs = append(errs, errors.New("bite_damage must be >= 0"))
	}
	if c.Sim.BiteDuration <= 0 {
		errs = append(errs, errors.New("bite_duration must be positive"))
	}
	if c.Sim.PursuitRadius < 0 {
		errs = append(errs, errors.New("pursuit_radius must be >= 0"))
	}
	return errors.Join(errs...)
}

// TickInterval - длительность одного шага.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// TickDelta - dt одного шага в секундах.
func (c Config) TickDelta() float64 {
	return 1.0 / float64(c.TickRate)
}
