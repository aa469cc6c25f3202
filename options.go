package coapcodec

import (
	"bytes"
	"sort"

	cerr "github.com/coalalib/coapcodec/errors"
)

// optionEntry holds every value seen for one option number, in the order
// they were inserted.
type optionEntry struct {
	code   OptionCode
	values [][]byte
}

// Options stores a message's options keyed by number. Entries stay sorted
// by number, so serialization walks them in wire order without a sort
// pass; repeats of one number keep insertion order.
type Options struct {
	entries []optionEntry
}

func NewOptions() *Options {
	return &Options{}
}

// search finds the bucket for code, or the insertion point and false.
func (o *Options) search(code OptionCode) (int, bool) {
	i := sort.Search(len(o.entries), func(i int) bool {
		return o.entries[i].code >= code
	})
	return i, i < len(o.entries) && o.entries[i].code == code
}

// append stores a value without validating the number. The option codec
// uses it while parsing, where unknown numbers are preserved verbatim.
func (o *Options) append(code OptionCode, value []byte) {
	i, ok := o.search(code)
	if ok {
		o.entries[i].values = append(o.entries[i].values, value)
		return
	}
	o.entries = append(o.entries, optionEntry{})
	copy(o.entries[i+1:], o.entries[i:])
	o.entries[i] = optionEntry{code: code, values: [][]byte{value}}
}

// Insert appends value to the number's list, keeping prior values.
// Number 0 is reserved by RFC 7252.
func (o *Options) Insert(code OptionCode, value []byte) error {
	if code == 0 {
		return cerr.OptionNumberOutOfRange
	}
	if len(value) > MaxOptionHeaderValue {
		return cerr.OptionValueTooLarge
	}
	o.append(code, value)
	return nil
}

// Set replaces all prior values for the number with the single value.
func (o *Options) Set(code OptionCode, value []byte) error {
	if code == 0 {
		return cerr.OptionNumberOutOfRange
	}
	if len(value) > MaxOptionHeaderValue {
		return cerr.OptionValueTooLarge
	}
	i, ok := o.search(code)
	if ok {
		o.entries[i].values = [][]byte{value}
		return nil
	}
	o.entries = append(o.entries, optionEntry{})
	copy(o.entries[i+1:], o.entries[i:])
	o.entries[i] = optionEntry{code: code, values: [][]byte{value}}
	return nil
}

// Get returns the ordered values stored for the number, nil if none.
func (o *Options) Get(code OptionCode) [][]byte {
	if i, ok := o.search(code); ok {
		return o.entries[i].values
	}
	return nil
}

// GetFirst returns the first value stored for the number, nil if none.
func (o *Options) GetFirst(code OptionCode) []byte {
	if i, ok := o.search(code); ok {
		return o.entries[i].values[0]
	}
	return nil
}

func (o *Options) Has(code OptionCode) bool {
	_, ok := o.search(code)
	return ok
}

// Remove drops all values for the number.
func (o *Options) Remove(code OptionCode) {
	if i, ok := o.search(code); ok {
		o.entries = append(o.entries[:i], o.entries[i+1:]...)
	}
}

// Len is the total number of (number, value) pairs.
func (o *Options) Len() int {
	n := 0
	for _, e := range o.entries {
		n += len(e.values)
	}
	return n
}

// Iterate yields (number, value) pairs ascending by number, insertion
// order within a number. Returning false from fn stops the walk.
func (o *Options) Iterate(fn func(code OptionCode, value []byte) bool) {
	for _, e := range o.entries {
		for _, v := range e.values {
			if !fn(e.code, v) {
				return
			}
		}
	}
}

// Equal compares two option sets bytewise, repeats in order.
func (o *Options) Equal(other *Options) bool {
	if len(o.entries) != len(other.entries) {
		return false
	}
	for i, e := range o.entries {
		oe := other.entries[i]
		if e.code != oe.code || len(e.values) != len(oe.values) {
			return false
		}
		for j, v := range e.values {
			if !bytes.Equal(v, oe.values[j]) {
				return false
			}
		}
	}
	return true
}

// Clone copies the container structure; values still alias the originals.
func (o *Options) Clone() *Options {
	clone := &Options{entries: make([]optionEntry, len(o.entries))}
	for i, e := range o.entries {
		values := make([][]byte, len(e.values))
		copy(values, e.values)
		clone.entries[i] = optionEntry{code: e.code, values: values}
	}
	return clone
}

// Represents an Option for a CoAP Message. The byte value is canonical;
// the typed accessors are views over it.
type CoAPMessageOption struct {
	Code  OptionCode
	Value []byte
}

func NewOption(code OptionCode, value []byte) *CoAPMessageOption {
	return &CoAPMessageOption{
		Code:  code,
		Value: value,
	}
}

// Returns the string value of an option
func (o *CoAPMessageOption) StringValue() string {
	return string(o.Value)
}

func (o *CoAPMessageOption) IntValue() int {
	v, err := decodeInt(o.Value)
	if err != nil {
		return 0
	}
	return int(v)
}

func (o *CoAPMessageOption) UintValue() (uint64, error) {
	return decodeInt(o.Value)
}

func (o *CoAPMessageOption) IsEmpty() bool {
	return len(o.Value) == 0
}

// Checks if an option is repeatable
func (o *CoAPMessageOption) IsRepeatableOption() bool {
	def, ok := optionDefs[o.Code]
	return ok && def.repeatable
}

// Checks if an option code is recognizable/valid
func (o *CoAPMessageOption) IsValidOption() bool {
	_, ok := optionDefs[o.Code]
	return ok
}
