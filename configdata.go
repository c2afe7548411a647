// Package achievecard provides embedded assets for the achievecard CLI.
//
// The root package exists solely to embed [config.default.toml] via
// [DefaultConfigTOML], which `achievecard config init` writes to the data
// directory.
package achievecard

import _ "embed"

// DefaultConfigTOML holds the raw bytes of config.default.toml, generated by
// cmd/genconfig from config.ExampleConfig and config.ConfigDocs.
//
//go:embed config.default.toml
var DefaultConfigTOML []byte
