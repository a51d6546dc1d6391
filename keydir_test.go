package bitcask

import "testing"

func TestKeydirPutGetDelete(t *testing.T) {
	kd := newKeydir()

	if _, ok := kd.Get("a"); ok {
		t.Fatal("expected empty keydir to not contain a")
	}

	kd.Put("a", Entry{Timestamp: 1, ValueSize: 3, ValueOffset: 10})
	e, ok := kd.Get("a")
	if !ok {
		t.Fatal("expected a to be present")
	}
	if e.ValueOffset != 10 || e.ValueSize != 3 {
		t.Fatalf("unexpected entry: %+v", e)
	}

	kd.Put("a", Entry{Timestamp: 2, ValueSize: 5, ValueOffset: 20})
	e, _ = kd.Get("a")
	if e.ValueOffset != 20 {
		t.Fatal("expected second put to replace the first")
	}

	kd.Delete("a")
	if kd.Contains("a") {
		t.Fatal("expected a to be gone after delete")
	}
}

func TestKeydirRange(t *testing.T) {
	kd := newKeydir()
	kd.Put("a", Entry{ValueSize: 1})
	kd.Put("b", Entry{ValueSize: 1})
	kd.Put("c", Entry{ValueSize: 1})

	seen := map[string]bool{}
	kd.Range(func(key string, _ Entry) bool {
		seen[key] = true
		return true
	})
	if len(seen) != 3 {
		t.Fatalf("visited %d keys, want 3", len(seen))
	}
}

func TestKeydirRangeStopsEarly(t *testing.T) {
	kd := newKeydir()
	kd.Put("a", Entry{})
	kd.Put("b", Entry{})
	kd.Put("c", Entry{})

	count := 0
	kd.Range(func(key string, _ Entry) bool {
		count++
		return false
	})
	if count != 1 {
		t.Fatalf("expected Range to stop after one call, got %d", count)
	}
}
