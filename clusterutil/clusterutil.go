// Package clusterutil provides the small collaborator helpers a
// consistent-hashing cluster layer builds on top of this store: SHA-1
// digests, hex conversion, and local IP discovery. None of it is part of
// the storage core; it is kept here, dependency-free, exactly as spec.md
// §6 names it.
package clusterutil

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math/big"
	"net"
)

// SHA1 computes the SHA-1 digest of the UTF-8 representation of v and
// returns it as a 160-bit unsigned big integer.
func SHA1(v any) *big.Int {
	sum := sha1.Sum([]byte(fmt.Sprint(v)))
	return new(big.Int).SetBytes(sum[:])
}

// Hex renders x as a 40-character lowercase hex string, left-padded with
// zeros to the full 160-bit width.
func Hex(x *big.Int) string {
	s := hex.EncodeToString(x.Bytes())
	if len(s) >= 40 {
		return s
	}
	padding := make([]byte, 40-len(s))
	for i := range padding {
		padding[i] = '0'
	}
	return string(padding) + s
}

// ParseHex parses a hex string produced by Hex (or any hex string) back
// into an integer.
func ParseHex(s string) (*big.Int, error) {
	x, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("clusterutil: invalid hex string %q", s)
	}
	return x, nil
}

// LocalIP returns the first non-loopback IPv4 or IPv6 address bound to a
// local interface, if any.
func LocalIP() (string, bool) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", false
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		return ipNet.IP.String(), true
	}
	return "", false
}
