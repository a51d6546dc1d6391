package bitcask

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadHintFileRoundTrip(t *testing.T) {
	kd := newKeydir()
	kd.Put("a", Entry{Timestamp: 1, ValueSize: 3, ValueOffset: 28})
	kd.Put("b", Entry{Timestamp: 2, ValueSize: 5, ValueOffset: 100})

	path := filepath.Join(t.TempDir(), "store.db.hint")
	if err := writeHintFile(path, kd); err != nil {
		t.Fatal(err)
	}

	result, err := readHintFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(result.entries))
	}
	if result.entries["a"].ValueOffset != 28 {
		t.Fatalf("unexpected entry for a: %+v", result.entries["a"])
	}
	if result.maxOffset != 105 {
		t.Fatalf("maxOffset = %d, want 105", result.maxOffset)
	}
}

func TestReadHintFileMissingIsNotAnError(t *testing.T) {
	result, err := readHintFile(filepath.Join(t.TempDir(), "nope.hint"))
	if err != nil {
		t.Fatal(err)
	}
	if result != nil {
		t.Fatal("expected nil result for a missing hint file")
	}
}

func TestReadHintFileTruncatedIsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db.hint")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := readHintFile(path)
	if err == nil {
		t.Fatal("expected an error for a truncated hint file")
	}
}

func TestScanLogStopsAtZeroSentinel(t *testing.T) {
	ml, err := openMappedLog(filepath.Join(t.TempDir(), "log.db"), 64)
	if err != nil {
		t.Fatal(err)
	}
	defer ml.close()

	kd := newKeydir()
	offset, err := scanLog(ml, 0, kd)
	if err != nil {
		t.Fatal(err)
	}
	if offset != 0 {
		t.Fatalf("offset = %d, want 0", offset)
	}
	if kd.Len() != 0 {
		t.Fatalf("keydir has %d entries, want 0", kd.Len())
	}
}

func TestScanLogHandlesTombstones(t *testing.T) {
	ml, err := openMappedLog(filepath.Join(t.TempDir(), "log.db"), 128)
	if err != nil {
		t.Fatal(err)
	}
	defer ml.close()

	kd := newKeydir()
	next := writeTestRecordForScan(t, ml, 0, 1, "k", []byte("v"))
	writeTestRecordForScan(t, ml, next, 2, "k", nil)

	offset, err := scanLog(ml, 0, kd)
	if err != nil {
		t.Fatal(err)
	}
	if offset == 0 {
		t.Fatal("expected scan to advance past both records")
	}
	if kd.Contains("k") {
		t.Fatal("expected k to be absent after its tombstone")
	}
}

func writeTestRecordForScan(t *testing.T, ml *MappedLog, offset int64, ts int64, key string, value []byte) int64 {
	t.Helper()
	keyBytes := []byte(key)
	header := recordHeaderBytes(ts, uint32(len(keyBytes)), int64(len(value)))
	crc := recordCRC(header, keyBytes, value)

	if err := ml.putU64(offset, crc); err != nil {
		t.Fatal(err)
	}
	if err := ml.putBytes(offset+crcFieldSize, header); err != nil {
		t.Fatal(err)
	}
	if err := ml.putBytes(offset+crcFieldSize+recordHeaderSize, keyBytes); err != nil {
		t.Fatal(err)
	}
	if len(value) > 0 {
		if err := ml.putBytes(offset+crcFieldSize+recordHeaderSize+int64(len(keyBytes)), value); err != nil {
			t.Fatal(err)
		}
	}
	return offset + recordSize(len(keyBytes), int64(len(value)))
}
