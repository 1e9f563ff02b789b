package testutil

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/HerbHall/netsampler/pkg/models"
)

func TestLogger_NotNil(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewSQLiteStore_Usable(t *testing.T) {
	db := NewSQLiteStore(t)
	if db == nil {
		t.Fatal("expected non-nil store")
	}
	if err := db.DB().PingContext(context.Background()); err != nil {
		t.Fatalf("PingContext: %v", err)
	}
}

func TestNewFileStore_Empty(t *testing.T) {
	s := NewFileStore(t)
	if _, ok := s.Load(context.Background()); ok {
		t.Error("fresh file store should be empty")
	}
}

func TestMemoryStore_RecordsSaves(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	if _, ok := m.Load(ctx); ok {
		t.Fatal("new MemoryStore should be empty")
	}

	first := []string{"1", "2"}
	for _, v := range first {
		if err := m.Save(ctx, models.Sample{NewRecord(WithValue(v))}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	saves := m.Saves()
	if len(saves) != 2 {
		t.Fatalf("Saves len = %d, want 2", len(saves))
	}
	if saves[1][0].Value != "2" {
		t.Errorf("last save value = %q, want 2", saves[1][0].Value)
	}
	if m.Loads() != 1 {
		t.Errorf("Loads = %d, want 1", m.Loads())
	}
}

func TestMemoryStore_SaveErr(t *testing.T) {
	m := NewMemoryStore()
	m.SaveErr = errors.New("disk full")

	if err := m.Save(context.Background(), nil); err == nil {
		t.Fatal("expected SaveErr")
	}
	if _, ok := m.Current(); ok {
		t.Error("failed save should not store a sample")
	}
}

func TestMemoryStore_SeedAndClear(t *testing.T) {
	m := NewMemoryStore()
	m.Seed(models.Sample{NewRecord()})

	got, ok := m.Load(context.Background())
	if !ok || len(got) != 1 {
		t.Fatalf("Load after Seed = %v, %v", got, ok)
	}
	if err := m.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := m.Load(context.Background()); ok {
		t.Error("Load after Clear should be empty")
	}
	if len(m.Saves()) != 0 {
		t.Error("Seed should not count as a save")
	}
}

func TestClock_Advance(t *testing.T) {
	c := NewClock()
	start := c.Now()
	c.Advance(5 * time.Minute)
	if got := c.Now().Sub(start); got != 5*time.Minute {
		t.Errorf("Advance: elapsed = %v, want 5m", got)
	}
}

func TestClock_Set(t *testing.T) {
	c := NewClock()
	target := time.Date(2030, 6, 15, 12, 0, 0, 0, time.UTC)
	c.Set(target)
	if !c.Now().Equal(target) {
		t.Errorf("Set: got %v, want %v", c.Now(), target)
	}
}

func TestNewRecord_Options(t *testing.T) {
	ts := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	r := NewRecord(
		WithMetric("Ibytes", "2126:MB In/s:4"),
		WithValue("150.00"),
		WithObject("en1"),
		WithTimestamp(ts),
	)
	if r.Metric != "Ibytes" || r.ID != "2126:MB In/s:4" {
		t.Errorf("metric = %s/%s", r.Metric, r.ID)
	}
	if r.Value != "150.00" || r.Object != "en1" || !r.Timestamp.Equal(ts) {
		t.Errorf("record = %+v", r)
	}
}

func TestNetstatFixtures_HaveLinkRows(t *testing.T) {
	for name, text := range map[string]string{"first": NetstatFirst, "second": NetstatSecond} {
		if got := strings.Count(text, "Link#"); got != 4 {
			t.Errorf("%s fixture has %d link rows, want 4", name, got)
		}
	}
}
