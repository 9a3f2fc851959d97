// Package component defines the lifecycle interface shared by long-running
// parts of a tool, and a registry that starts them in order and stops them
// in reverse.
package component
