// Package config provides centralized configuration management for the
// TaxWizz service. It handles loading configuration from multiple sources,
// validation, and the resolution of the on-disk data layout.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of
// precedence:
//
//  1. Environment variables (highest priority)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern TAXWIZZ_* for namespacing:
//
//	TAXWIZZ_SERVER_PORT=8080
//	TAXWIZZ_AUTH_JWT_SECRET=...
//	TAXWIZZ_PATHS_DATA_DIR=/var/lib/taxwizz
//	TAXWIZZ_LOGGING_LEVEL=info
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paths, err := config.NewPaths(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := paths.EnsureDirectories(); err != nil {
//	    log.Fatal(err)
//	}
package config
