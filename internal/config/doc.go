// Package config holds the construction-time options of a parser
// instance: the project root, the cell naming and root table used to
// resolve cross-repository imports, and the raw configuration values
// exposed to build files through read_config.
package config
