// Package constants defines shared configuration constants.
package constants

var (
	ConfigFile = "config.yaml"

	DefaultDir = ".libreflect"

	// EnvConfigDir replaces the home directory as the parent of DefaultDir.
	EnvConfigDir = "LIBREFLECT_CONFIG_DIR"

	// EnvPrefix prefixes every environment variable read by the config layer.
	EnvPrefix = "LIBREFLECT_"
)
