package platform

import (
	"errors"
	"testing"
)

func TestNewProvider_UnsupportedPlatform(t *testing.T) {
	saved := NewProviderFunc
	NewProviderFunc = nil
	defer func() { NewProviderFunc = saved }()

	_, err := NewProvider()
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestNewProvider_UsesRegisteredFunc(t *testing.T) {
	saved := NewProviderFunc
	defer func() { NewProviderFunc = saved }()

	want := &Provider{}
	NewProviderFunc = func() (*Provider, error) { return want, nil }
	got, err := NewProvider()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Error("expected the registered provider")
	}
}
