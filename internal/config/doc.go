// Package config loads the service settings from defaults, an optional YAML
// file and STUDYROOMS_* environment variables using viper, and validates them
// with struct tags plus a few cross-field rules (provider keys in live mode).
//
// The server requires the whole Config to be valid. Operator tooling reads
// the same sources with Read and validates only the section it needs.
package config
