// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - LoadEnv reads one or more .env files into the process environment
//     (the default ./.env is read automatically on first Load).
//   - Load parses the environment into any struct with `env` tags and caches
//     the result per type, so each config is parsed once per process.
//   - Structs implementing Validator are checked after parsing; an invalid
//     config is never cached.
//   - Reload and ResetCache exist for tests and for the CLI, which may
//     change variables from flags before loading.
//
// # Usage
//
//	var (
//	    statusCfg planstatus.Config
//	    clientCfg planclient.Config
//	)
//	if err := errors.Join(config.Load(&statusCfg), config.Load(&clientCfg)); err != nil {
//	    return err
//	}
//
// # Error Handling
//
// Errors wrap ErrParsingConfig, ErrInvalidConfig, ErrLoadingEnvFile or
// ErrNilPointer and can be checked with errors.Is.
package config
