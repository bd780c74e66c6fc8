// Package fetcher materializes a remote template tree into a local directory.
// Locators take the form owner/repo[/subpath][#ref]. The default strategy
// streams a repository tarball and extracts only the requested subpath; the
// git strategy performs a shallow in-memory clone instead.
package fetcher
