// Package config loads typed configuration from environment variables.
//
// Struct fields are bound with `env` tags from github.com/caarlos0/env/v11.
// Optional .env files are read with github.com/joho/godotenv; they never
// override variables already set in the process environment, so deployments
// keep full control while local development can rely on a checked-in
// .env.example copied to .env.
//
// Each configuration type is parsed once and cached:
//
//	var cfg struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Tests that change the environment call Reload.
package config
