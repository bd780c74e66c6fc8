// Package manifest reads, validates and rewrites a project's package.json.
// Templates copied out of a monorepo may pin sibling packages with the
// "workspace:" protocol; FixWorkspaceDeps replaces those pins so the project
// installs on its own.
package manifest
