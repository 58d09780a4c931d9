package utils

import (
	"context"
	"errors"
	"testing"
)

func TestCheckHealthRecordsEachProbe(t *testing.T) {
	probes := []HealthProbe{
		{Name: "calendar", Check: func(context.Context) error { return nil }},
		{Name: "redis", Check: func(context.Context) error { return errors.New("down") }},
	}
	status := CheckHealth(context.Background(), probes)
	if !status.Components["calendar"] {
		t.Fatalf("calendar should be healthy: %#v", status)
	}
	if status.Components["redis"] {
		t.Fatalf("redis should be unhealthy: %#v", status)
	}
	if got := GetHealthStatus(); got.CheckedAt != status.CheckedAt {
		t.Fatalf("snapshot not stored: %#v", got)
	}
}
