// Package app wires the compiler pipeline together: load declarations,
// validate, build plans, synthesize descriptions, export metadata. It owns
// the application configuration and logger setup.
package app
