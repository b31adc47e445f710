// Package config provides centralized configuration management for the
// capitalization report. It loads values from several sources, validates them
// and exposes a typed Config used by the pipeline, the HTTP server and the
// chart renderer.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// A .env file in the working directory is read into the process environment
// before environment variables are processed.
//
// # Environment Variables
//
// All environment variables follow the pattern CRYPTOCAP_<SECTION>_<FIELD>:
//
//	CRYPTOCAP_DATA_INPUT_FILE=datasets/coinmarketcap_06122017.csv
//	CRYPTOCAP_ANALYSIS_TOP_N=10
//	CRYPTOCAP_ANALYSIS_RANKING_ORDER=verify
//	CRYPTOCAP_LOGGING_LEVEL=debug
//
// # Validation
//
// All configuration is validated at load time to ensure:
//
//	- Required fields are present
//	- Ranking sizes are positive
//	- BigCapMin is strictly greater than MicroCapMin
//	- Enumerated settings hold a supported value
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Testing
//
// Use config.Default() to obtain a valid configuration that does not depend on
// the environment or files on disk.
package config
