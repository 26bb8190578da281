// Package transform provides the built-in derive functions that declarative
// manifests refer to by name.
//
// Numeric transforms read ints, arrays of ints, and the "data" array of
// object values, descending recursively. An input item that carries an
// error result (for example a source caught in a dependency cycle) makes
// every transform except count fail with that error.
package transform
