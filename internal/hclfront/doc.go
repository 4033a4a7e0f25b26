// Package hclfront is the HCL front-end adapter: it discovers component
// declaration files, decodes their blocks, and translates them into the
// agnostic field model. The core packages never depend on it.
package hclfront
