// Package cli defines the Cobra command tree for create-x402. The root
// command runs the scaffold pipeline; each other file registers one
// subcommand (list, doctor, config, version). Commands only handle flags,
// I/O formatting and wiring; the work lives in the internal packages.
package cli
