// Package core defines the shared language of figvars.
//
// This package contains:
//   - Variable rows and their typed values (Variable, Value, ValueType)
//   - Collections, modes and the mode identifier mapping
//   - The loaded Snapshot and the variables tree
//
// The Golden Rule: pkg/core imports ONLY pkg/color and stdlib.
// All other packages depend on core, not the reverse.
package core
