// Package config loads engine configuration from CUE files.
//
// Configuration is validated against an embedded CUE schema before it is
// decoded, so a malformed file fails at load time with a position-annotated
// error rather than surfacing later as odd engine behavior.
package config
