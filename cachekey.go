package coapcodec

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2s"
)

// includeInCacheKey reports whether an option participates in the request
// fingerprint. NoCacheKey options are out by the flag rule. Block1 and
// Block2 are excluded on top of it so that requests for different blocks
// of one transfer share a key, and Observe never identifies a distinct
// resource.
func includeInCacheKey(code OptionCode) bool {
	if code.NoCacheKey() {
		return false
	}
	switch code {
	case OptionBlock1, OptionBlock2, OptionObserve:
		return false
	}
	return true
}

// CacheKey is a deterministic fingerprint of the request: a Blake2s-256
// digest over the code, the token and every cache-key-relevant option in
// ascending number order. MessageID, type and payload never contribute,
// so retransmissions and block transfers of one request map to one key.
func (m *CoAPMessage) CacheKey() []byte {
	h, _ := blake2s.New256(nil)

	h.Write([]byte{byte(m.Code)})
	h.Write(m.Token)

	var hdr [6]byte
	m.ensureOptions().Iterate(func(code OptionCode, value []byte) bool {
		if !includeInCacheKey(code) {
			return true
		}
		binary.BigEndian.PutUint16(hdr[:2], uint16(code))
		binary.BigEndian.PutUint32(hdr[2:], uint32(len(value)))
		h.Write(hdr[:])
		h.Write(value)
		return true
	})

	return h.Sum(nil)
}
