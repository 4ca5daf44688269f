//go:build !debug
// +build !debug

package errs

const fatalAsserts = false
