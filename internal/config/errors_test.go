package config

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigurationErrorCollection(t *testing.T) {
	collection := NewConfigurationErrorCollection()
	if collection.HasErrors() {
		t.Fatal("new collection should be empty")
	}
	if got := collection.Error(); got != "no configuration errors" {
		t.Errorf("Error() = %q", got)
	}

	collection.Add(NewConfigurationError("/etc/rcinit/services.yaml", "services.yaml", "registry", "services", "validation", "record \"a\": bad"))
	if got, want := collection.Error(), "[registry/services] services.yaml: record \"a\": bad"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	collection.Add(NewConfigurationError("/etc/rcinit/services.yaml", "services.yaml", "registry", "services", "validation", "record \"b\": bad"))
	if !collection.HasErrors() || collection.Count() != 2 {
		t.Fatalf("expected 2 errors, got %d", collection.Count())
	}
	want := "2 configuration errors:\n" +
		"  [registry/services] services.yaml: record \"a\": bad\n" +
		"  [registry/services] services.yaml: record \"b\": bad"
	if got := collection.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	var cfgErr ConfigurationError
	if !errors.As(fmt.Errorf("load: %w", *collection), &cfgErr) {
		t.Fatal("errors.As should reach the individual ConfigurationError")
	}
	if cfgErr.Message != "record \"a\": bad" {
		t.Errorf("first error = %q", cfgErr.Message)
	}
}
