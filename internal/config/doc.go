// Package config provides typed configuration for the brand sales service and
// the brandreport command.
//
// # Configuration Sources
//
// Configuration is assembled in order of increasing precedence:
//
//  1. Default() values
//  2. A YAML file: $BRANDSALES_CONFIG_FILE, or config.yaml / configs/config.yaml
//  3. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern BRANDSALES_<SECTION>_<FIELD>:
//
//	BRANDSALES_SERVER_PORT=8080
//	BRANDSALES_LOGGING_LEVEL=debug
//	BRANDSALES_UPLOAD_MAX_BYTES=10485760
//	BRANDSALES_BRANDS_RULES_FILE=/etc/brandsales/brands.yaml
//	BRANDSALES_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Brand Rules
//
// Brand rules are ordered and the first matching rule wins. They may be listed
// inline under brands.rules or kept in a separate file read by LoadBrandRules:
//
//	brands:
//	  - pattern: "^TH_"
//	    label: "Theonia EU"
//	  - pattern: "^EU-PG-"
//	    label: "PupGrade EU"
//
// # Validation
//
// The assembled configuration is validated with go-playground/validator struct
// tags; Load fails rather than starting with an unusable configuration.
package config
