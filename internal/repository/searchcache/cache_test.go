package searchcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/crestline-labs/paperdesk/internal/db"
	"github.com/crestline-labs/paperdesk/internal/domain"
)

type mockStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func samplePapers() []domain.Paper {
	return []domain.Paper{
		{ID: "a1", Title: "First paper", Citations: 3},
		{ID: "b2", Title: "Second paper"},
	}
}

func TestCache_PutThenGet(t *testing.T) {
	kv := map[string][]byte{}
	var gotTTL time.Duration
	ms := &mockStore{
		getFn: func(_ context.Context, key string) ([]byte, error) {
			if v, ok := kv[key]; ok {
				return v, nil
			}
			return nil, db.ErrKeyNotFound
		},
		setFn: func(_ context.Context, key string, value []byte, ttl time.Duration) error {
			kv[key] = value
			gotTTL = ttl
			return nil
		},
	}

	c := New(ms, 24*time.Hour, zap.NewNop())
	years := domain.YearRange{From: 2019, To: 2024}
	c.Put(context.Background(), "quantum sensing", 20, years, samplePapers())

	if gotTTL != 24*time.Hour {
		t.Errorf("ttl = %v, want 24h", gotTTL)
	}

	papers, ok := c.Get(context.Background(), "quantum sensing", 20, years)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(papers) != 2 || papers[0].Title != "First paper" {
		t.Fatalf("papers = %+v", papers)
	}
}

func TestCache_KeyNormalization(t *testing.T) {
	kv := map[string][]byte{}
	ms := &mockStore{
		getFn: func(_ context.Context, key string) ([]byte, error) {
			if v, ok := kv[key]; ok {
				return v, nil
			}
			return nil, db.ErrKeyNotFound
		},
		setFn: func(_ context.Context, key string, value []byte, _ time.Duration) error {
			kv[key] = value
			return nil
		},
	}

	c := New(ms, time.Hour, zap.NewNop())
	c.Put(context.Background(), "Quantum   Sensing", 20, domain.YearRange{}, samplePapers())

	// Case and whitespace differences hit the same entry.
	if _, ok := c.Get(context.Background(), "quantum sensing", 20, domain.YearRange{}); !ok {
		t.Error("expected hit for normalized query")
	}
	// Different parameters are a distinct entry.
	if _, ok := c.Get(context.Background(), "quantum sensing", 50, domain.YearRange{}); ok {
		t.Error("expected miss for a different max results")
	}
	if _, ok := c.Get(context.Background(), "quantum sensing", 20, domain.YearRange{From: 2020}); ok {
		t.Error("expected miss for a different year range")
	}
}

func TestCache_StoreErrorIsMiss(t *testing.T) {
	ms := &mockStore{getFn: func(_ context.Context, _ string) ([]byte, error) {
		return nil, errors.New("connection refused")
	}}

	c := New(ms, time.Hour, zap.NewNop())
	if _, ok := c.Get(context.Background(), "anything", 10, domain.YearRange{}); ok {
		t.Fatal("store error must degrade to a miss")
	}
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	ms := &mockStore{getFn: func(_ context.Context, _ string) ([]byte, error) {
		return []byte("{not json"), nil
	}}

	c := New(ms, time.Hour, zap.NewNop())
	if _, ok := c.Get(context.Background(), "anything", 10, domain.YearRange{}); ok {
		t.Fatal("corrupt entry must degrade to a miss")
	}
}
