package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kjstillabower/weather-lookup/internal/models"
)

func paris() *models.Location {
	return &models.Location{Name: "Paris", Country: "France", Latitude: 48.85, Longitude: 2.35}
}

// TestInMemoryStore_GetSet verifies that Set stores a session and Get returns it.
func TestInMemoryStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(time.Minute)

	if err := s.Set(ctx, models.Session{ID: "a", Location: paris(), Unit: models.UnitImperial}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if got.ID != "a" || got.Location == nil || *got.Location != *paris() || got.Unit != models.UnitImperial {
		t.Errorf("Get() = %+v, want Paris in imperial", got)
	}
}

func TestInMemoryStore_Get_Miss(t *testing.T) {
	_, ok, err := NewInMemoryStore(time.Minute).Get(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true, want false for miss")
	}
}

// TestInMemoryStore_Get_Expired verifies entries vanish once the TTL passes,
// tokens included.
func TestInMemoryStore_Get_Expired(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	_ = s.Set(ctx, models.Session{ID: "a", Location: paris()})
	_, _ = s.NextToken(ctx, "a")

	now = now.Add(2 * time.Minute)

	if _, ok, _ := s.Get(ctx, "a"); ok {
		t.Error("Get() ok = true, want false for expired entry")
	}
	if n, _ := s.LatestToken(ctx, "a"); n != 0 {
		t.Errorf("LatestToken() = %d, want 0 after expiry", n)
	}
}

func TestInMemoryStore_StoredCopyIsIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(time.Minute)
	loc := paris()
	_ = s.Set(ctx, models.Session{ID: "a", Location: loc})
	loc.Name = "Mutated"

	got, _, _ := s.Get(ctx, "a")
	if got.Location.Name != "Paris" {
		t.Errorf("stored Location.Name = %q, want Paris", got.Location.Name)
	}
}

func TestInMemoryStore_Tokens(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(time.Minute)

	if n, _ := s.LatestToken(ctx, "a"); n != 0 {
		t.Errorf("LatestToken() = %d, want 0 before any token", n)
	}
	for want := uint64(1); want <= 3; want++ {
		got, err := s.NextToken(ctx, "a")
		if err != nil {
			t.Fatalf("NextToken() error = %v", err)
		}
		if got != want {
			t.Errorf("NextToken() = %d, want %d", got, want)
		}
	}
	if n, _ := s.LatestToken(ctx, "a"); n != 3 {
		t.Errorf("LatestToken() = %d, want 3", n)
	}
	if n, _ := s.NextToken(ctx, "b"); n != 1 {
		t.Errorf("NextToken(b) = %d, want 1 (independent per session)", n)
	}
	// Tokens survive a Set on the same id.
	_ = s.Set(ctx, models.Session{ID: "a"})
	if n, _ := s.LatestToken(ctx, "a"); n != 3 {
		t.Errorf("LatestToken() after Set = %d, want 3", n)
	}
}

func TestInMemoryStore_ConcurrentTokensAreUnique(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(time.Minute)

	const n = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[uint64]bool)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := s.NextToken(ctx, "a")
			if err != nil {
				t.Errorf("NextToken() error = %v", err)
				return
			}
			mu.Lock()
			seen[tok] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Errorf("unique tokens = %d, want %d", len(seen), n)
	}
}

func TestInMemoryStore_Errors(t *testing.T) {
	s := NewInMemoryStore(0)
	if s.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", s.ttl, DefaultTTL)
	}
	if err := s.Set(context.Background(), models.Session{}); !errors.Is(err, ErrMissingID) {
		t.Errorf("Set() error = %v, want %v", err, ErrMissingID)
	}
	if _, err := s.NextToken(context.Background(), ""); !errors.Is(err, ErrMissingID) {
		t.Errorf("NextToken() error = %v, want %v", err, ErrMissingID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := s.Get(ctx, "a"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v, want context.Canceled", err)
	}
	if err := s.Ping(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Ping() error = %v, want context.Canceled", err)
	}
}
