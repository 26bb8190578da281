// Package ir provides the value model shared by every glimpse package.
//
// Source payloads and derived values are IRValues: a sealed union of null,
// string, int, bool, array and object. Floats are not representable; numeric
// payloads are int64 so derived values hash and compare deterministically.
//
// This package imports nothing internal. Every other internal package may
// import ir.
package ir
