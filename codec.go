package coapcodec

import (
	"encoding/binary"

	cerr "github.com/coalalib/coapcodec/errors"
	log "github.com/ndmsystems/logger"
)

// Extension tiers for the option delta and length nibbles
// (RFC 7252 section 3.1).
const (
	extByteCode   = 13
	extByteAddend = 13
	extWordCode   = 14
	extWordAddend = 269
	extReserved   = 15
)

// getOptionHeaderValue picks the nibble for an option delta or length.
func getOptionHeaderValue(optValue int) (int, error) {
	switch {
	case optValue < extByteAddend:
		return optValue, nil

	case optValue < extWordAddend:
		return extByteCode, nil

	case optValue <= MaxOptionHeaderValue:
		return extWordCode, nil
	}
	log.Error("Invalid option header value")
	return 0, cerr.OptionValueTooLarge
}

// optionHeaderSize is the number of extension bytes a delta or length
// value occupies after the composite byte.
func optionHeaderSize(optValue int) int {
	switch {
	case optValue < extByteAddend:
		return 0
	case optValue < extWordAddend:
		return 1
	}
	return 2
}

// readExtOption resolves a delta or length nibble against the cursor.
// The wire puts delta extension bytes before length extension bytes, so
// both fields must share this decoder on the same cursor, in that order.
func readExtOption(nibble int, r *packetReader) (int, error) {
	switch nibble {
	case extByteCode:
		b, err := r.TakeByte()
		if err != nil {
			return 0, err
		}
		return int(b) + extByteAddend, nil

	case extWordCode:
		b, err := r.Take(2)
		if err != nil {
			return 0, err
		}
		return int(binary.BigEndian.Uint16(b)) + extWordAddend, nil

	case extReserved:
		return 0, cerr.OptionLengthReserved
	}
	return nibble, nil
}

// writeExtOption emits the extension bytes for a nibble chosen by
// getOptionHeaderValue.
func writeExtOption(nibble, optValue int, w *packetWriter) error {
	switch nibble {
	case extByteCode:
		return w.WriteByte(byte(optValue - extByteAddend))

	case extWordCode:
		var tmp [2]byte
		binary.BigEndian.PutUint16(tmp[:], uint16(optValue-extWordAddend))
		return w.Write(tmp[:])
	}
	return nil
}

// parseOptions consumes the option stream into opts. It reports whether a
// payload marker was consumed, in which case the cursor sits on the first
// payload byte.
func parseOptions(r *packetReader, opts *Options) (hasPayload bool, err error) {
	number := uint32(0)
	for r.Remaining() > 0 {
		b, err := r.TakeByte()
		if err != nil {
			return false, err
		}
		if b == PayloadMarker {
			if r.Remaining() == 0 {
				return false, cerr.PayloadMarkerWithoutPayload
			}
			return true, nil
		}

		delta, err := readExtOption(int(b>>4), r)
		if err != nil {
			return false, err
		}
		length, err := readExtOption(int(b&0x0f), r)
		if err != nil {
			return false, err
		}

		number += uint32(delta)
		if number > 0xffff {
			return false, cerr.OptionNumberOverflow
		}

		value, err := r.Take(length)
		if err != nil {
			return false, err
		}
		opts.append(OptionCode(number), value)
	}
	return false, nil
}

// writeOption emits one option given its delta from the previous number.
func writeOption(w *packetWriter, delta int, value []byte) error {
	deltaNibble, err := getOptionHeaderValue(delta)
	if err != nil {
		return err
	}
	lengthNibble, err := getOptionHeaderValue(len(value))
	if err != nil {
		return err
	}

	if err := w.WriteByte(byte(deltaNibble<<4 | lengthNibble)); err != nil {
		return err
	}
	if err := writeExtOption(deltaNibble, delta, w); err != nil {
		return err
	}
	if err := writeExtOption(lengthNibble, len(value), w); err != nil {
		return err
	}
	return w.Write(value)
}

// emitOptions writes the whole option stream in ascending number order.
// Repeats of one number go out with delta 0.
func emitOptions(w *packetWriter, opts *Options) error {
	prev := 0
	var emitErr error
	opts.Iterate(func(code OptionCode, value []byte) bool {
		if err := writeOption(w, int(code)-prev, value); err != nil {
			emitErr = err
			return false
		}
		prev = int(code)
		return true
	})
	return emitErr
}

// encodeInt serializes v as a minimal big-endian unsigned integer.
// Zero encodes as no bytes at all (RFC 7252 section 3.2).
func encodeInt(v uint64) []byte {
	if v == 0 {
		return nil
	}
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	i := 0
	for tmp[i] == 0 {
		i++
	}
	return tmp[i:]
}

// decodeInt interprets 0..8 bytes as a big-endian unsigned integer.
func decodeInt(b []byte) (uint64, error) {
	if len(b) > 8 {
		return 0, cerr.UintValueOutOfRange
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}
