// Package win32 implements the platform interfaces with user32 calls
// through golang.org/x/sys/windows. It needs no cgo and registers itself
// as the platform provider on import. On other systems the package is
// empty and platform.NewProvider returns platform.ErrUnsupported.
package win32
