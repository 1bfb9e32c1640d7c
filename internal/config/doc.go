// Package config defines the configuration model for browsint: crawl
// defaults, validation, per-site YAML overrides, XDG directory paths, and
// API key lookup for the enrichment adapters.
package config
