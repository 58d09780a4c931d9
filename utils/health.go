package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// HealthProbe checks one external collaborator.
type HealthProbe struct {
	Name  string
	Check func(ctx context.Context) error
}

// RedisProbe wraps a Redis client ping as a probe.
func RedisProbe(name string, client *redis.Client) HealthProbe {
	return HealthProbe{
		Name: name,
		Check: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}
}

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Components map[string]bool `json:"components"`
	CheckedAt  time.Time       `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// CheckHealth runs every probe once and stores the snapshot.
func CheckHealth(ctx context.Context, probes []HealthProbe) HealthStatus {
	status := HealthStatus{
		Components: make(map[string]bool, len(probes)),
		CheckedAt:  time.Now(),
	}
	for _, p := range probes {
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := p.Check(probeCtx)
		cancel()
		if err != nil {
			GetLogger().Warn("health probe failed", zap.String("component", p.Name), zap.Error(err))
		}
		status.Components[p.Name] = err == nil
	}

	mu.Lock()
	currentHealth = status
	mu.Unlock()
	return status
}

// StartHealthMonitor performs periodic health checks and updates in-memory state.
func StartHealthMonitor(ctx context.Context, interval time.Duration, probes []HealthProbe) {
	if len(probes) == 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		CheckHealth(ctx, probes)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				CheckHealth(ctx, probes)
			}
		}
	}()
}
