// Package config provides the configuration of stegscan: detection tunables,
// decode settings, external tool locations, the password list and report
// preferences. A Config is built once per process with NewConfig, overlaid
// with the optional .stegscan YAML file and CLI flags, then validated.
package config
