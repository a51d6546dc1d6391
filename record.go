package bitcask

import (
	"encoding/binary"
	"hash/crc32"
)

// Record layout on the log, per byte offset from the record's start:
//
//	[0:8)   crc        u64, IEEE CRC-32 of header++key++value widened to 64 bits
//	[8:16)  ts          i64, milliseconds since epoch
//	[16:20) key_size    u32
//	[20:28) value_size  i64 (0 marks a tombstone)
//	[28:28+key_size)                key bytes
//	[28+key_size:28+key_size+value_size)  value bytes
const (
	crcFieldSize        = 8
	recordHeaderSize    = 20 // ts(8) + key_size(4) + value_size(8)
	recordFixedOverhead = crcFieldSize + recordHeaderSize
)

// recordSize returns the total on-log length of a record with the given
// key and value sizes.
func recordSize(keySize int, valueSize int64) int64 {
	return int64(recordFixedOverhead) + int64(keySize) + valueSize
}

// recordHeaderBytes builds the 20-byte ts|key_size|value_size header.
func recordHeaderBytes(ts int64, keySize uint32, valueSize int64) []byte {
	h := make([]byte, recordHeaderSize)
	binary.NativeEndian.PutUint64(h[0:8], uint64(ts))
	binary.NativeEndian.PutUint32(h[8:12], keySize)
	binary.NativeEndian.PutUint64(h[12:20], uint64(valueSize))
	return h
}

// recordCRC computes the CRC-32 (IEEE 802.3) of header++key++value and
// widens it into the 8-byte native-order CRC word. The upper 4 bytes are
// always zero; readers mask/compare as 32-bit unsigned.
func recordCRC(header, key, value []byte) uint64 {
	crc := crc32.NewIEEE()
	crc.Write(header)
	crc.Write(key)
	crc.Write(value)
	return uint64(crc.Sum32())
}

// decodedHeader is the result of reading a record's header fields.
type decodedHeader struct {
	ts        int64
	keySize   uint32
	valueSize int64
}

// decodeHeader reads the ts|key_size|value_size header of the record whose
// first byte (the crc word) sits at recordOffset.
func decodeHeader(ml *MappedLog, recordOffset int64) (decodedHeader, error) {
	headerOffset := recordOffset + crcFieldSize
	ts, err := ml.getI64(headerOffset)
	if err != nil {
		return decodedHeader{}, err
	}
	keySize, err := ml.getU32(headerOffset + 8)
	if err != nil {
		return decodedHeader{}, err
	}
	valueSize, err := ml.getI64(headerOffset + 12)
	if err != nil {
		return decodedHeader{}, err
	}
	return decodedHeader{ts: ts, keySize: keySize, valueSize: valueSize}, nil
}

// verifyRecord recomputes the CRC over the record at recordOffset and
// compares it against the stored crc word. Both sides are masked to 32
// bits per the reserved-but-zero upper half of the crc field.
func verifyRecord(ml *MappedLog, recordOffset int64) (bool, error) {
	storedCRC, err := ml.getU64(recordOffset)
	if err != nil {
		return false, err
	}

	hdr, err := decodeHeader(ml, recordOffset)
	if err != nil {
		return false, err
	}

	n := recordSize(int(hdr.keySize), hdr.valueSize)
	crc, err := ml.crc32At(recordOffset+crcFieldSize, n-crcFieldSize)
	if err != nil {
		return false, err
	}

	return uint32(storedCRC) == crc, nil
}
