package common

const (
	// XronosVersion is the version string printed by the CLI.
	XronosVersion = "0.3.0"

	// ConfigFileName is the name of the options file looked up next to a
	// design description when no explicit config path is given.
	ConfigFileName = "xronos.toml"

	// DesignFileExtension is the expected extension of design descriptions.
	DesignFileExtension = ".toml"
)
