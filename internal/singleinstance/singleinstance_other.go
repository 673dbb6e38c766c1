//go:build !windows

// Package singleinstance provides single instance control for the application.
package singleinstance

// AcquireLock is a no-op on non-Windows platforms. Single instance
// control is only implemented for Windows; on other platforms the caller
// always proceeds.
func AcquireLock() (release func(), ok bool, err error) {
	return func() {}, true, nil
}
