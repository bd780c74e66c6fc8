// Package installer runs the system package manager against a freshly
// scaffolded project. Process execution goes through the Executor interface
// so the install step can be exercised without a real package manager.
package installer
