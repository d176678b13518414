package platform

import (
	"testing"
)

func TestNewProvider_Unregistered(t *testing.T) {
	orig := NewProviderFunc
	NewProviderFunc = nil
	defer func() { NewProviderFunc = orig }()

	_, err := NewProvider(Options{})
	if err == nil {
		t.Fatal("expected error without a registered backend")
	}
	if err != ErrUnsupported {
		t.Errorf("expected ErrUnsupported, got: %v", err)
	}
}

func TestNewProvider_Registered(t *testing.T) {
	orig := NewProviderFunc
	defer func() { NewProviderFunc = orig }()

	var got Options
	NewProviderFunc = func(opts Options) (*Provider, error) {
		got = opts
		return &Provider{}, nil
	}
	p, err := NewProvider(Options{ControlURL: "ws://127.0.0.1:9222", Headless: true})
	if err != nil {
		t.Fatal(err)
	}
	if p == nil {
		t.Fatal("expected provider")
	}
	if got.ControlURL != "ws://127.0.0.1:9222" || !got.Headless {
		t.Errorf("options not passed through: %+v", got)
	}
}
