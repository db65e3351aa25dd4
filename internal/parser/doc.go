// Package parser reads string lists out of small manifest files in the formats
// used by workspace declarations: JSON (with or without comments), YAML, TOML
// and go.work. It is used by the workspace declaration reader.
package parser
