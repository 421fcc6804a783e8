package eventstore

import (
	"sync"
	"testing"
	"time"

	"github.com/cexll/ideas-portal/internal/surface"
)

func event(surfaceID, action string) *surface.ActionEvent {
	return &surface.ActionEvent{ID: action, SurfaceID: surfaceID, ActionName: action}
}

func TestStore_AppendGetAndList(t *testing.T) {
	store := NewStore()

	a := store.Append(event("dashboard", "search_issues"))
	b := store.Append(event("details", "add_reaction"))
	if a.Seq != 1 || b.Seq != 2 {
		t.Fatalf("sequences = %d, %d, want 1, 2", a.Seq, b.Seq)
	}
	if a.Status != StatusPending {
		t.Fatalf("Status = %s, want %s", a.Status, StatusPending)
	}

	got, ok := store.Get(2)
	if !ok {
		t.Fatal("Get should return true for existing entry")
	}
	if got.Event.ActionName != "add_reaction" {
		t.Fatalf("Get returned action %q, want %q", got.Event.ActionName, "add_reaction")
	}
	if _, ok := store.Get(3); ok {
		t.Fatal("Get should return false for unknown sequence")
	}

	list := store.List()
	if len(list) != 2 || list[0].Seq != 2 || list[1].Seq != 1 {
		t.Fatalf("List = %+v, want newest first", list)
	}
	if store.LastSeq() != 2 {
		t.Fatalf("LastSeq = %d, want 2", store.LastSeq())
	}
}

func TestStore_After(t *testing.T) {
	store := NewStore()
	for i := 0; i < 5; i++ {
		store.Append(event("s", "a"))
	}

	tests := []struct {
		name  string
		after int64
		limit int
		want  []int64
	}{
		{"from start", 0, 0, []int64{1, 2, 3, 4, 5}},
		{"middle", 3, 0, []int64{4, 5}},
		{"limited", 1, 2, []int64{2, 3}},
		{"caught up", 5, 0, nil},
		{"beyond", 9, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := store.After(tt.after, tt.limit)
			if len(got) != len(tt.want) {
				t.Fatalf("After(%d, %d) returned %d entries, want %d", tt.after, tt.limit, len(got), len(tt.want))
			}
			for i, e := range got {
				if e.Seq != tt.want[i] {
					t.Fatalf("entry %d seq = %d, want %d", i, e.Seq, tt.want[i])
				}
			}
		})
	}
}

func TestStore_Ack(t *testing.T) {
	store := NewStore()
	store.now = func() time.Time { return time.Unix(100, 0) }
	e := store.Append(event("s", "a"))

	store.now = func() time.Time { return time.Unix(200, 0) }
	if !store.Ack(e.Seq) {
		t.Fatal("Ack should succeed for existing entry")
	}
	got, _ := store.Get(e.Seq)
	if got.Status != StatusDelivered {
		t.Fatalf("Status = %s, want %s", got.Status, StatusDelivered)
	}
	if !got.UpdatedAt.Equal(time.Unix(200, 0)) {
		t.Fatalf("UpdatedAt = %v, want updated", got.UpdatedAt)
	}
	if store.Ack(42) {
		t.Fatal("Ack should fail for unknown entry")
	}
}

func TestStore_Supersede(t *testing.T) {
	store := NewStore()
	a := store.Append(event("dashboard", "a"))
	b := store.Append(event("dashboard", "b"))
	c := store.Append(event("details", "c"))
	store.Ack(b.Seq)

	if n := store.Supersede("dashboard"); n != 1 {
		t.Fatalf("affected = %d, want 1", n)
	}
	for seq, want := range map[int64]Status{a.Seq: StatusSuperseded, b.Seq: StatusDelivered, c.Seq: StatusPending} {
		got, _ := store.Get(seq)
		if got.Status != want {
			t.Fatalf("entry %d status = %s, want %s", seq, got.Status, want)
		}
	}
	if n := store.Supersede("unknown"); n != 0 {
		t.Fatalf("affected = %d, want 0", n)
	}
}

func TestStore_ConcurrentAppend(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Append(event("s", "a"))
		}()
	}
	wg.Wait()

	all := store.After(0, 0)
	if len(all) != 50 {
		t.Fatalf("len = %d, want 50", len(all))
	}
	for i, e := range all {
		if e.Seq != int64(i+1) {
			t.Fatalf("entry %d seq = %d, want %d", i, e.Seq, i+1)
		}
	}
}
