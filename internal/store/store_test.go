package store

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/uidump/internal/hierarchy"
)

func TestContentHashHex_Consistency(t *testing.T) {
	h1 := ContentHashHex([]byte("hello world"))
	h2 := ContentHashHex([]byte("hello world"))
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestNewID_FormatAndOrder(t *testing.T) {
	seen := make(map[string]bool)
	prev := ""
	for range 200 {
		id := NewID()
		if len(id) != 26 {
			t.Fatalf("expected 26 chars, got %d (%q)", len(id), id)
		}
		for _, c := range id {
			if !strings.ContainsRune(crockford, c) {
				t.Fatalf("unexpected character %q in %q", c, id)
			}
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		if id[:10] < prev {
			t.Fatalf("timestamp prefix went backwards: %q < %q", id[:10], prev)
		}
		prev = id[:10]
	}
}

func TestEncode_KnownValue(t *testing.T) {
	var b [16]byte
	if got := encode(b); got != "00000000000000000000000000" {
		t.Errorf("zero value encoded as %q", got)
	}
	for i := range b {
		b[i] = 0xff
	}
	if got := encode(b); got != "7ZZZZZZZZZZZZZZZZZZZZZZZZZ" {
		t.Errorf("max value encoded as %q", got)
	}
}

func TestStore_PutGetDelete(t *testing.T) {
	s := New(time.Hour)
	d := &Dump{ID: "d1", CreatedAt: time.Now()}
	s.Put(d)

	if got := s.Get("d1"); got != d {
		t.Fatalf("expected stored dump back, got %v", got)
	}
	if !s.Delete("d1") {
		t.Error("expected delete to report existing dump")
	}
	if s.Delete("d1") {
		t.Error("expected second delete to report missing dump")
	}
	if s.Get("d1") != nil {
		t.Error("expected nil after delete")
	}
}

func TestStore_FindByHash(t *testing.T) {
	s := New(time.Hour)
	s.Put(&Dump{ID: "a", ContentHash: "h1", CreatedAt: time.Now()})
	s.Put(&Dump{ID: "b", ContentHash: "h2", CreatedAt: time.Now()})

	if d := s.FindByHash("h2"); d == nil || d.ID != "b" {
		t.Errorf("expected dump b, got %v", d)
	}
	if d := s.FindByHash("h3"); d != nil {
		t.Errorf("expected nil, got %v", d)
	}
}

func TestStore_ListSorted(t *testing.T) {
	s := New(time.Hour)
	for _, id := range []string{"c", "a", "b"} {
		s.Put(&Dump{ID: id, CreatedAt: time.Now()})
	}
	var ids []string
	for _, d := range s.List() {
		ids = append(ids, d.ID)
	}
	if strings.Join(ids, ",") != "a,b,c" {
		t.Errorf("expected a,b,c, got %v", ids)
	}
}

func TestStore_TTLCleanup(t *testing.T) {
	s := New(50 * time.Millisecond)
	s.Put(&Dump{ID: "old", CreatedAt: time.Now().Add(-time.Second)})
	s.Put(&Dump{ID: "new", CreatedAt: time.Now()})

	if n := s.Cleanup(); n != 1 {
		t.Errorf("expected 1 removed, got %d", n)
	}
	if s.Get("old") != nil {
		t.Error("expected expired dump to be cleaned up")
	}
	if s.Get("new") == nil {
		t.Error("expected fresh dump to survive cleanup")
	}
}

func TestStore_RunStopsOnCancel(t *testing.T) {
	s := New(time.Millisecond)
	s.Put(&Dump{ID: "old", CreatedAt: time.Now().Add(-time.Second)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(time.Second)
	for s.Get("old") != nil {
		select {
		case <-deadline:
			t.Fatal("cleanup loop never evicted expired dump")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestDump_Summary(t *testing.T) {
	tree, err := hierarchy.Parse(strings.NewReader(
		`<hierarchy><node index="0" bounds="[0,0]" /><node index="1" /></hierarchy>`), hierarchy.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := &Dump{ID: "x", Source: "upload", Tree: tree}
	sum := d.Summary()
	if sum.Nodes != 2 {
		t.Errorf("expected 2 nodes, got %d", sum.Nodes)
	}
	if len(sum.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", sum.Warnings)
	}

	empty := (&Dump{ID: "y"}).Summary()
	if empty.Warnings == nil {
		t.Error("expected non-nil warnings slice")
	}
}

func TestPutIfAbsentHash_ConcurrentIdentical(t *testing.T) {
	s := New(time.Hour)

	const n = 16
	var wg sync.WaitGroup
	results := make([]*Dump, n)
	stored := make([]bool, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], stored[i] = s.PutIfAbsentHash(&Dump{ID: NewID(), ContentHash: "same", CreatedAt: time.Now()})
		}()
	}
	wg.Wait()

	winners := 0
	for i := range n {
		if stored[i] {
			winners++
		}
		if results[i] != results[0] {
			t.Fatalf("result %d is %q, want %q", i, results[i].ID, results[0].ID)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one stored dump, got %d", winners)
	}
	if got := len(s.List()); got != 1 {
		t.Fatalf("expected 1 dump in store, got %d", got)
	}

	other, ok := s.PutIfAbsentHash(&Dump{ID: NewID(), ContentHash: "different"})
	if !ok || s.Get(other.ID) != other {
		t.Fatal("dump with a new hash was not stored")
	}
}
