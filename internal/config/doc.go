// Package config manages user-level settings stored at ~/.create-x402/config.yaml.
// Values may also be supplied through CREATE_X402_* environment variables,
// which take precedence over the file.
package config
