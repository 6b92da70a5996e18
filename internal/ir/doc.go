// Package ir provides the intermediate representation types for synthgate.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This ensures IR remains the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - An IR is immutable once constructed; analyzers never mutate it
//   - Effect kinds and constraint variants are closed sums, matched
//     exhaustively in every analyzer
//   - NO float types in IR field declarations - use int for numbers
//   - All JSON tags use snake_case
package ir
