// internal/router/serializer_test.go
package router

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/user/leasecraft/internal/types"
)

func TestSerializerSameSessionIsSerial(t *testing.T) {
	s := NewSerializer(8)
	ctx := context.Background()

	var inFlight, maxInFlight atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Do(ctx, "s1", func(context.Context) error {
				n := inFlight.Add(1)
				for {
					prev := maxInFlight.Load()
					if n <= prev || maxInFlight.CompareAndSwap(prev, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				inFlight.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	if maxInFlight.Load() != 1 {
		t.Errorf("same-session turns overlapped: max in flight = %d", maxInFlight.Load())
	}
}

func TestSerializerDifferentSessionsRunConcurrently(t *testing.T) {
	s := NewSerializer(4)
	ctx := context.Background()

	started := make(chan struct{}, 2)
	release := make(chan struct{})
	var wg sync.WaitGroup
	for _, id := range []string{"a", "b"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			s.Do(ctx, types.SessionID(id), func(context.Context) error {
				started <- struct{}{}
				<-release
				return nil
			})
		}(id)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatal("sessions should run concurrently")
		}
	}
	close(release)
	wg.Wait()
}

func TestSerializerGlobalCap(t *testing.T) {
	s := NewSerializer(1)
	ctx := context.Background()

	var inFlight, maxInFlight atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		id := types.SessionID(rune('a' + i))
		go func() {
			defer wg.Done()
			s.Do(ctx, id, func(context.Context) error {
				n := inFlight.Add(1)
				for {
					prev := maxInFlight.Load()
					if n <= prev || maxInFlight.CompareAndSwap(prev, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				inFlight.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	if maxInFlight.Load() != 1 {
		t.Errorf("global cap violated: max in flight = %d", maxInFlight.Load())
	}
}

func TestSerializerCancelledContext(t *testing.T) {
	s := NewSerializer(1)

	block := make(chan struct{})
	go s.Do(context.Background(), "a", func(context.Context) error {
		<-block
		return nil
	})
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Do(ctx, "b", func(context.Context) error { return nil }); err == nil {
		t.Error("expected context error while the global slot is held")
	}
	close(block)
}

func TestSerializerLanesCleanedUp(t *testing.T) {
	s := NewSerializer(4)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s.Do(ctx, "s1", func(context.Context) error { return nil })
	}

	s.mu.Lock()
	n := len(s.lanes)
	s.mu.Unlock()
	if n != 0 {
		t.Errorf("expected empty lane map, got %d entries", n)
	}
}
