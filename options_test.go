package coapcodec

import (
	"bytes"
	"errors"
	"testing"

	cerr "github.com/coalalib/coapcodec/errors"
)

func TestOptionsInsertPreservesOrder(t *testing.T) {
	opts := NewOptions()
	if err := opts.Insert(OptionURIQuery, []byte("a=1")); err != nil {
		t.Fatal(err)
	}
	if err := opts.Insert(OptionURIPath, []byte("foo")); err != nil {
		t.Fatal(err)
	}
	if err := opts.Insert(OptionURIQuery, []byte("b=2")); err != nil {
		t.Fatal(err)
	}
	if err := opts.Insert(OptionURIPath, []byte("bar")); err != nil {
		t.Fatal(err)
	}

	var got []struct {
		code  OptionCode
		value string
	}
	opts.Iterate(func(code OptionCode, value []byte) bool {
		got = append(got, struct {
			code  OptionCode
			value string
		}{code, string(value)})
		return true
	})

	want := []struct {
		code  OptionCode
		value string
	}{
		{OptionURIPath, "foo"},
		{OptionURIPath, "bar"},
		{OptionURIQuery, "a=1"},
		{OptionURIQuery, "b=2"},
	}
	if len(got) != len(want) {
		t.Fatalf("Iterate yielded %d pairs, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pair %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOptionsSetReplacesValues(t *testing.T) {
	opts := NewOptions()
	if err := opts.Insert(OptionEtag, []byte{0x01}); err != nil {
		t.Fatal(err)
	}
	if err := opts.Insert(OptionEtag, []byte{0x02}); err != nil {
		t.Fatal(err)
	}
	if err := opts.Set(OptionEtag, []byte{0x03}); err != nil {
		t.Fatal(err)
	}

	values := opts.Get(OptionEtag)
	if len(values) != 1 || !bytes.Equal(values[0], []byte{0x03}) {
		t.Errorf("Get() = %v, want single value 03", values)
	}
}

func TestOptionsRemove(t *testing.T) {
	opts := NewOptions()
	if err := opts.Insert(OptionURIPath, []byte("foo")); err != nil {
		t.Fatal(err)
	}
	if err := opts.Insert(OptionMaxAge, []byte{0x3c}); err != nil {
		t.Fatal(err)
	}

	opts.Remove(OptionURIPath)

	if opts.Has(OptionURIPath) {
		t.Error("Has(OptionURIPath) = true after Remove")
	}
	if !opts.Has(OptionMaxAge) {
		t.Error("Remove dropped an unrelated option")
	}
	if opts.Len() != 1 {
		t.Errorf("Len() = %d, want 1", opts.Len())
	}
}

func TestOptionsRejectsNumberZero(t *testing.T) {
	opts := NewOptions()
	if err := opts.Insert(0, nil); !errors.Is(err, cerr.OptionNumberOutOfRange) {
		t.Errorf("Insert(0) error = %v, want OptionNumberOutOfRange", err)
	}
	if err := opts.Set(0, nil); !errors.Is(err, cerr.OptionNumberOutOfRange) {
		t.Errorf("Set(0) error = %v, want OptionNumberOutOfRange", err)
	}
}

func TestOptionsGetFirst(t *testing.T) {
	opts := NewOptions()
	if got := opts.GetFirst(OptionEtag); got != nil {
		t.Errorf("GetFirst on empty = %v, want nil", got)
	}
	if err := opts.Insert(OptionEtag, []byte{0x01}); err != nil {
		t.Fatal(err)
	}
	if err := opts.Insert(OptionEtag, []byte{0x02}); err != nil {
		t.Fatal(err)
	}
	if got := opts.GetFirst(OptionEtag); !bytes.Equal(got, []byte{0x01}) {
		t.Errorf("GetFirst = %x, want 01", got)
	}
}

func TestOptionCodeFlags(t *testing.T) {
	tests := []struct {
		code       OptionCode
		critical   bool
		unsafe     bool
		noCacheKey bool
	}{
		{OptionIfMatch, true, false, false},
		{OptionURIHost, true, true, false},
		{OptionEtag, false, false, false},
		{OptionObserve, false, true, false},
		{OptionContentFormat, false, false, false},
		{OptionMaxAge, false, true, false},
		{OptionSize2, false, false, true},
		{OptionSize1, false, false, true},
		{OptionURIQuery, true, true, false},
	}
	for _, tt := range tests {
		if got := tt.code.IsCritical(); got != tt.critical {
			t.Errorf("%v.IsCritical() = %v, want %v", tt.code, got, tt.critical)
		}
		if got := tt.code.IsUnsafe(); got != tt.unsafe {
			t.Errorf("%v.IsUnsafe() = %v, want %v", tt.code, got, tt.unsafe)
		}
		if got := tt.code.NoCacheKey(); got != tt.noCacheKey {
			t.Errorf("%v.NoCacheKey() = %v, want %v", tt.code, got, tt.noCacheKey)
		}
	}
}

func TestCoAPMessageOptionValues(t *testing.T) {
	tests := []struct {
		name    string
		value   []byte
		wantStr string
		wantInt int
	}{
		{"empty", nil, "", 0},
		{"string", []byte("hello"), "hello", 0x68656c6c6f},
		{"uint one byte", []byte{0x28}, "(", 0x28},
		{"uint two bytes", []byte{0x01, 0x00}, "\x01\x00", 256},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOption(OptionContentFormat, tt.value)
			if got := o.StringValue(); got != tt.wantStr {
				t.Errorf("StringValue() = %q, want %q", got, tt.wantStr)
			}
			if got := o.IntValue(); got != tt.wantInt {
				t.Errorf("IntValue() = %d, want %d", got, tt.wantInt)
			}
		})
	}
}

func TestCoAPMessageOptionRepeatable(t *testing.T) {
	repeatable := []OptionCode{OptionIfMatch, OptionEtag, OptionLocationPath, OptionURIPath, OptionURIQuery, OptionLocationQuery}
	for _, code := range repeatable {
		if !NewOption(code, nil).IsRepeatableOption() {
			t.Errorf("%v should be repeatable", code)
		}
	}
	single := []OptionCode{OptionURIHost, OptionIfNoneMatch, OptionContentFormat, OptionMaxAge, OptionBlock1, OptionBlock2}
	for _, code := range single {
		if NewOption(code, nil).IsRepeatableOption() {
			t.Errorf("%v should not be repeatable", code)
		}
	}
}
