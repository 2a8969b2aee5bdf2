//go:build windows

package win32

import "github.com/mj1618/delphi-cli/internal/platform"

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		inputter := NewInputter()
		return &platform.Provider{
			WindowManager: NewWindowManager(inputter),
			Inputter:      inputter,
			ValueSetter:   NewValueSetter(),
		}, nil
	}
}
