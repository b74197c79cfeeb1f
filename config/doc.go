// Package config provides configuration loading and validation for serve.
//
// The package handles YAML (or any format viper reads) configuration files,
// environment variables, and CLI flags with automatic merging and validation
// using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (SERVE_ prefix)
//  4. CLI flags
//
// Without explicit files, ./serve.yaml is read when present.
//
// # Usage
//
//	cfg, err := config.Load([]string{"serve.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with SERVE_ prefix:
//   - server.port → SERVE_SERVER_PORT
//   - auth.credentials → SERVE_AUTH_CREDENTIALS
//   - storage.path → SERVE_STORAGE_PATH
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Bind must be an IP address or hostname
//   - Credentials, when set, must be "user:pass" with a non-empty user
//   - Log level must be debug, info, warn, or error
//   - Env must be dev, development, prod, or production
package config
