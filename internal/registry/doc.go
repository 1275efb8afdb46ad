// Package registry holds the set of tests declared by registration scripts.
//
// A Registry is created empty for one discovery pass. Every registration
// script calls Register (usually through a Scope bound to the script's
// directory) against the same instance. Once discovery completes, Freeze
// checks that every device-tree overlay a test names exists, and turns the
// registry read-only. Only a frozen registry answers Lookup and All.
//
// Registration is not synchronized: all Register calls of a pass must come
// from one goroutine. After Freeze returns nil the registry never changes
// again and may be read from any number of goroutines.
//
// The package performs no logging and no I/O other than the overlay
// existence checks in Freeze. Reporting errors is the caller's job.
package registry
