package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrParse is returned when environment variables cannot be parsed
	// into the target struct.
	ErrParse = errors.New("config: parse environment")

	// ErrEnvFile is returned when an explicitly named env file cannot be
	// loaded.
	ErrEnvFile = errors.New("config: load env file")
)

var (
	dotenvOnce sync.Once

	cacheMu sync.Mutex
	cache   = map[reflect.Type]any{}
)

// LoadEnv loads the named env files into the process environment before any
// config structs are parsed. Without arguments it loads ./.env when present.
// Variables already set in the environment win over file values.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		if len(files) == 0 {
			// A missing default .env is not an error.
			return nil
		}
		return fmt.Errorf("%w: %v", ErrEnvFile, err)
	}
	return nil
}

// Load parses environment variables into a fresh T. Each struct type is
// parsed once per process and served from cache afterwards, so components
// can load their own config independently without re-reading the
// environment. The default .env file is picked up lazily on first use.
func Load[T any]() (T, error) {
	dotenvOnce.Do(func() { _ = godotenv.Load() })

	typ := reflect.TypeOf((*T)(nil)).Elem()

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if v, ok := cache[typ]; ok {
		return v.(T), nil
	}

	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrParse, err)
	}
	cache[typ] = cfg
	return cfg, nil
}

// MustLoad is Load for configs the process cannot start without.
func MustLoad[T any]() T {
	cfg, err := Load[T]()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Reset clears the config cache so changed environment variables are picked
// up on the next Load. Intended for tests.
func Reset() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cache = map[reflect.Type]any{}
}
