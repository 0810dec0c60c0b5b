// Package config loads the coven-messenger YAML configuration.
//
// Configuration resolves in three layers: built-in defaults rooted at the
// data directory, the YAML file (with ${VAR} environment expansion), and
// validation of the merged result. A missing config file is not an error at
// the call site; callers fall back to Default.
package config
