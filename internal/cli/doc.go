// Package cli parses command-line arguments into an app configuration.
package cli
