// Package app contains the core application logic: it runs a discovery
// pass, turns the frozen registry into a run plan, and reports the outcome.
// It is decoupled from any specific entrypoint like a CLI.
package app
