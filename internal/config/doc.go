// Package config provides configuration management for rcinit.
//
// Configuration is loaded from a single directory. The default directory is
// /etc/rcinit; commands accept --config-path to use another one.
//
// # Configuration Directory
//
//   - config.yaml: supervisor settings (InitConfig)
//   - services.yaml: the persisted service registry (see package services)
//
// A missing config.yaml yields GetDefaultConfig. Fields absent from the file
// keep their default values. The loaded configuration is validated as a whole
// and every problem is reported in one ValidationErrors value.
//
// # Example config.yaml
//
//	defaultRunlevel: default
//	bootSequence: [sysinit, boot, default]
//	startupTimeout: 5m
//	stopTimeout: 30s
//	virtualConflict: lastWriteWins
//	watch: true
//	logging:
//	  level: info
//	  format: text
//	metrics:
//	  enabled: true
//	  address: ":9120"
//	executor:
//	  shell: /bin/sh
//
// # Storage
//
// Storage reads and writes files relative to the configuration directory.
// WriteFile replaces files atomically, so a crash never leaves a truncated
// registry behind.
//
// Errors found while parsing persisted files are reported as
// ConfigurationError values carrying the file, source and category. When a
// file has several bad entries they are returned together in a
// ConfigurationErrorCollection.
package config
