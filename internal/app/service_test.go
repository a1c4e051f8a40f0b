package app

import (
	"testing"
	"time"

	"sharelink-service/internal/infra/cache"

	"github.com/stretchr/testify/assert"
)

func TestCacheSweepStopsOnShutdownSignal(t *testing.T) {
	s := &Service{
		cache:     cache.NewMetadataCache(time.Minute),
		sweepStop: make(chan struct{}),
	}

	done := make(chan struct{})
	go func() {
		s.startCacheSweep()
		close(done)
	}()

	close(s.sweepStop)

	select {
	case <-done:
	case <-time.After(time.Second):
		assert.Fail(t, "cache sweep did not stop after shutdown signal")
	}
}
