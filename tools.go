//go:build tools
// +build tools

// Package tools pins the code generators used by go:generate directives
// (mockgen for the mocks/ package) in go.mod, so a fresh checkout can
// regenerate them without an extra install step.
package draw_lab

import (
	_ "go.uber.org/mock/mockgen"
)
