// Package config defines the application configuration structure and
// loading logic.
//
// Configuration is sourced from an optional YAML config file and from
// environment variables with the TASKLOOP_ prefix, with environment
// variables taking precedence. Loaded configuration is validated with
// struct tags before use, so the rest of the application can assume a
// well-formed Config.
package config
