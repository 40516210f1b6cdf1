package telemetry

import (
	"context"
	"testing"
)

func TestSetupNoopWhenEndpointEmpty(t *testing.T) {
	for _, endpoint := range []string{"", "  ", "off", "FALSE"} {
		shutdown, err := Setup(context.Background(), "scroll-test", endpoint)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", endpoint, err)
		}
		if err := shutdown(context.Background()); err != nil {
			t.Fatalf("%q: shutdown error: %v", endpoint, err)
		}
	}
}

func TestSetupCreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address: nothing is exported before shutdown.
	shutdown, err := Setup(context.Background(), "scroll-test", "http://192.0.2.1:4318")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}
