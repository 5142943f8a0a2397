// Package templates holds the template trees bundled into the binary.
// Each top-level directory is one template, addressed in recipes as
// "bundled:<dir>".
package templates

import "embed"

//go:embed all:frontend
var bundled embed.FS

// FS returns the bundled template filesystem.
func FS() embed.FS { return bundled }
