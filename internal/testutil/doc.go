// Package testutil provides shared helpers for declaring components in tests
// and running the compile pipeline against in-memory declaration files.
package testutil
