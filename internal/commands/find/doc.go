// Package find implements the projfind root command: it merges flags over the
// config file, runs discovery and renders the result as text, a table or JSON,
// or lets the user pick one project interactively.
package find
