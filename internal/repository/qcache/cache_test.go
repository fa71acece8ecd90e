package qcache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/AdhiDevX369-work/doc-rag/internal/db"
)

// --- Mocks ---

type mockStore struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	getKeys []string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	m.getKeys = append(m.getKeys, key)
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return data, nil
}

func (m *mockStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

// --- Tests ---

func TestCache_PutThenGet(t *testing.T) {
	store := newMockStore()
	c := New(store, 24*time.Hour, nil, zap.NewNop())
	ctx := context.Background()

	c.Put(ctx, "What is attention?", "ai-engineering", Entry{
		Answer:  "Attention weighs token pairs.",
		Sources: []Source{{Source: "Book Alpha | p.12", Score: 0.9}},
	})

	e, ok := c.Get(ctx, "What is attention?", "ai-engineering")
	if !ok {
		t.Fatal("Get() miss after Put()")
	}
	if e.Answer != "Attention weighs token pairs." {
		t.Errorf("Answer = %q", e.Answer)
	}
	if e.Query != "What is attention?" || e.Book != "ai-engineering" {
		t.Errorf("provenance = %q/%q", e.Query, e.Book)
	}
	if e.CachedAt == 0 {
		t.Error("CachedAt not stamped")
	}
	if len(e.Sources) != 1 || e.Sources[0].Source != "Book Alpha | p.12" {
		t.Errorf("Sources = %+v", e.Sources)
	}
}

func TestCache_KeyNormalization(t *testing.T) {
	store := newMockStore()
	c := New(store, time.Hour, nil, zap.NewNop())
	ctx := context.Background()

	c.Put(ctx, "  What Is Attention?  ", "AI-Engineering", Entry{Answer: "yes"})

	if _, ok := c.Get(ctx, "what is attention?", "ai-engineering"); !ok {
		t.Error("Get() miss, want case and whitespace insensitive key")
	}
	if len(store.data) != 1 {
		t.Errorf("len(store.data) = %d, want 1", len(store.data))
	}
}

func TestCache_DistinctBookContexts(t *testing.T) {
	store := newMockStore()
	c := New(store, time.Hour, nil, zap.NewNop())
	ctx := context.Background()

	c.Put(ctx, "what is in chapter 3?", "ai-engineering", Entry{Answer: "alpha"})
	c.Put(ctx, "what is in chapter 3?", "ml-basics", Entry{Answer: "beta"})

	a, _ := c.Get(ctx, "what is in chapter 3?", "ai-engineering")
	b, _ := c.Get(ctx, "what is in chapter 3?", "ml-basics")
	if a.Answer != "alpha" || b.Answer != "beta" {
		t.Errorf("answers = %q/%q, want per-book entries", a.Answer, b.Answer)
	}
}

func TestCache_KeyShape(t *testing.T) {
	store := newMockStore()
	c := New(store, time.Hour, nil, zap.NewNop())

	c.Get(context.Background(), "anything", "somewhere")

	if len(store.getKeys) != 1 {
		t.Fatalf("store.Get calls = %d", len(store.getKeys))
	}
	key := store.getKeys[0]
	const wantPrefix = "docrag:answer_cache:"
	if len(key) != len(wantPrefix)+16 {
		t.Errorf("key = %q, want prefix plus 8 hex-encoded bytes", key)
	}
	if key[:len(wantPrefix)] != wantPrefix {
		t.Errorf("key prefix = %q", key[:len(wantPrefix)])
	}
}

func TestCache_Miss(t *testing.T) {
	c := New(newMockStore(), time.Hour, nil, zap.NewNop())

	if _, ok := c.Get(context.Background(), "never asked", ""); ok {
		t.Error("Get() hit on empty store")
	}
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	store := newMockStore()
	c := New(store, time.Hour, nil, zap.NewNop())
	ctx := context.Background()

	c.Put(ctx, "q", "b", Entry{Answer: "ok"})
	for k := range store.data {
		store.data[k] = []byte("{not json")
	}

	if _, ok := c.Get(ctx, "q", "b"); ok {
		t.Error("Get() hit on corrupt entry")
	}
}

func TestCache_StoreErrorsAreSwallowed(t *testing.T) {
	store := newMockStore()
	store.getErr = errors.New("connection reset")
	store.setErr = errors.New("connection reset")
	c := New(store, time.Hour, nil, zap.NewNop())
	ctx := context.Background()

	c.Put(ctx, "q", "b", Entry{Answer: "ok"})
	if _, ok := c.Get(ctx, "q", "b"); ok {
		t.Error("Get() hit despite store error")
	}
}

func TestCache_TTLPassedToStore(t *testing.T) {
	store := newMockStore()
	c := New(store, 6*time.Hour, nil, zap.NewNop())

	c.Put(context.Background(), "q", "b", Entry{Answer: "ok"})

	for _, ttl := range store.ttls {
		if ttl != 6*time.Hour {
			t.Errorf("ttl = %v, want 6h", ttl)
		}
	}
	if len(store.ttls) != 1 {
		t.Fatalf("writes = %d, want 1", len(store.ttls))
	}
}

func TestCache_EntryRoundTripsSources(t *testing.T) {
	store := newMockStore()
	c := New(store, time.Hour, nil, zap.NewNop())
	ctx := context.Background()

	c.Put(ctx, "q", "b", Entry{
		Answer:  "ok",
		Sources: []Source{{Source: "A | p.1", Score: 0.5}, {Source: "B | TOC", Score: 0.4}},
	})

	var raw Entry
	for _, data := range store.data {
		if err := json.Unmarshal(data, &raw); err != nil {
			t.Fatalf("stored entry not valid JSON: %v", err)
		}
	}
	if len(raw.Sources) != 2 || raw.Sources[1].Source != "B | TOC" {
		t.Errorf("stored Sources = %+v", raw.Sources)
	}
}
