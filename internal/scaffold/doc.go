// Package scaffold runs the create pipeline: choose a template, download it
// into a new project directory, rewrite workspace dependency versions and
// install dependencies. It powers the root create-x402 command.
package scaffold
