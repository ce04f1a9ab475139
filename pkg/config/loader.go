package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// cache holds one parsed value per configuration type.
type cache struct {
	mu     sync.Mutex
	values map[reflect.Type]any
}

var (
	global = &cache{values: make(map[reflect.Type]any)}

	defaultEnvOnce sync.Once
)

// Load parses environment variables into v using `env` struct tags.
// The optional .env file in the working directory is read once before the
// first parse. Each configuration type is parsed once; later calls copy the
// cached value into v.
//
//	type ServerConfig struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg ServerConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	defaultEnvOnce.Do(func() {
		// A missing .env file is not an error.
		_ = LoadEnv(".env")
	})

	key := reflect.TypeFor[T]()

	global.mu.Lock()
	defer global.mu.Unlock()

	if cached, ok := global.values[key]; ok {
		*v = cached.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	global.values[key] = parsed
	*v = parsed
	return nil
}

// Reload drops the cached value for T and parses the environment again.
func Reload[T any](v *T) error {
	global.mu.Lock()
	delete(global.values, reflect.TypeFor[T]())
	global.mu.Unlock()
	return Load(v)
}

// LoadEnv reads the given .env files and exports their variables. Later files
// override earlier ones, while variables already present in the process
// environment always win. Missing files are skipped; unreadable or malformed
// files are reported.
func LoadEnv(paths ...string) error {
	merged := make(map[string]string)
	for _, path := range paths {
		vars, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return errors.Join(ErrReadingEnvFile, fmt.Errorf("%s: %w", path, err))
		}
		for k, val := range vars {
			merged[k] = val
		}
	}

	for k, val := range merged {
		if _, exists := os.LookupEnv(k); exists {
			continue
		}
		if err := os.Setenv(k, val); err != nil {
			return errors.Join(ErrReadingEnvFile, err)
		}
	}
	return nil
}
