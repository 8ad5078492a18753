package config

import (
	"context"
	"testing"
	"time"
)

func TestNewDependencies_WithUpstream(t *testing.T) {
	deps, err := NewDependencies(
		context.Background(),
		WithLogger(EnvDev),
		WithUpstream("test-key", "http://localhost:8080", 5*time.Second),
	)
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}
	defer deps.Close()

	if deps.Logger == nil {
		t.Fatal("logger not configured")
	}
	if deps.Upstream == nil {
		t.Fatal("upstream client not configured")
	}
}

func TestNewDependencies_OptionErrorPropagates(t *testing.T) {
	// Nothing listens on port 1; the redis ping must fail the build.
	deps, err := NewDependencies(
		context.Background(),
		WithLogger(EnvDev),
		WithRedis("localhost:1", 0),
	)
	if err == nil {
		deps.Close()
		t.Fatal("expected an error from an unreachable redis")
	}
}
