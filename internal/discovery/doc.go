// Package discovery finds project roots below one or more start paths.
//
// A Service streams directory candidates from an enumerate.Enumerator into a
// bounded worker pool. Each worker lists one directory, classifies it against
// the marker table and reads any workspace declarations. After every worker
// has finished, workspace membership is resolved in a single pass and the
// result is ordered by depth and path.
//
// With a result cap, candidates are processed one depth level at a time and
// the run stops after the first level at which enough visible projects are
// known, so a capped result is always the shallowest projects in
// (depth, path) order.
//
// Symlinked directories whose target lies within the searched area are
// reported once, under the target's real path.
//
// Per-path failures never stop a run; they are collected as PathErrors. Only
// an unusable start path is fatal.
package discovery
