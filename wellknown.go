package coapcodec

import (
	"net/url"
	"strings"

	cerr "github.com/coalalib/coapcodec/errors"
)

// Option value format (RFC 7252 section 3.2)
type ValueFormat uint8

const (
	ValueUnknown ValueFormat = iota
	ValueEmpty
	ValueOpaque
	ValueUint
	ValueString
)

type optionDef struct {
	format     ValueFormat
	minLen     int
	maxLen     int
	repeatable bool
}

/*
   +-----+----+---+---+---+----------------+--------+--------+---------+
   | No. | C  | U | N | R | Name           | Format | Length | Default |
   +-----+----+---+---+---+----------------+--------+--------+---------+
   |   1 | x  |   |   | x | If-Match       | opaque | 0-8    | (none)  |
   |   3 | x  | x | - |   | Uri-Host       | string | 1-255  | (see    |
   |     |    |   |   |   |                |        |        | below)  |
   |   4 |    |   |   | x | ETag           | opaque | 1-8    | (none)  |
   |   5 | x  |   |   |   | If-None-Match  | empty  | 0      | (none)  |
   |   6 |    | x | - |   | Observe        | uint   | 0-3    | (none)  |
   |   7 | x  | x | - |   | Uri-Port       | uint   | 0-2    | (see    |
   |     |    |   |   |   |                |        |        | below)  |
   |   8 |    |   |   | x | Location-Path  | string | 0-255  | (none)  |
   |  11 | x  | x | - | x | Uri-Path       | string | 0-255  | (none)  |
   |  12 |    |   |   |   | Content-Format | uint   | 0-2    | (none)  |
   |  14 |    | x | - |   | Max-Age        | uint   | 0-4    | 60      |
   |  15 | x  | x | - | x | Uri-Query      | string | 0-255  | (none)  |
   |  17 | x  |   |   |   | Accept         | uint   | 0-2    | (none)  |
   |  20 |    |   |   | x | Location-Query | string | 0-255  | (none)  |
   |  23 | x  | x | - | - | Block2         | uint   | 0-3    | (none)  |
   |  27 | x  | x | - | - | Block1         | uint   | 0-3    | (none)  |
   |  28 |    |   | x |   | Size2          | uint   | 0-4    | (none)  |
   |  35 | x  | x | - |   | Proxy-Uri      | string | 1-1034 | (none)  |
   |  39 | x  | x | - |   | Proxy-Scheme   | string | 1-255  | (none)  |
   |  60 |    |   | x |   | Size1          | uint   | 0-4    | (none)  |
   +-----+----+---+---+---+----------------+--------+--------+---------+
   C=Critical, U=Unsafe, N=NoCacheKey, R=Repeatable
*/
var optionDefs = map[OptionCode]optionDef{
	OptionIfMatch:       {format: ValueOpaque, minLen: 0, maxLen: 8, repeatable: true},
	OptionURIHost:       {format: ValueString, minLen: 1, maxLen: 255},
	OptionEtag:          {format: ValueOpaque, minLen: 1, maxLen: 8, repeatable: true},
	OptionIfNoneMatch:   {format: ValueEmpty, minLen: 0, maxLen: 0},
	OptionObserve:       {format: ValueUint, minLen: 0, maxLen: 3},
	OptionURIPort:       {format: ValueUint, minLen: 0, maxLen: 2},
	OptionLocationPath:  {format: ValueString, minLen: 0, maxLen: 255, repeatable: true},
	OptionURIPath:       {format: ValueString, minLen: 0, maxLen: 255, repeatable: true},
	OptionContentFormat: {format: ValueUint, minLen: 0, maxLen: 2},
	OptionMaxAge:        {format: ValueUint, minLen: 0, maxLen: 4},
	OptionURIQuery:      {format: ValueString, minLen: 0, maxLen: 255, repeatable: true},
	OptionAccept:        {format: ValueUint, minLen: 0, maxLen: 2},
	OptionLocationQuery: {format: ValueString, minLen: 0, maxLen: 255, repeatable: true},
	OptionBlock2:        {format: ValueUint, minLen: 0, maxLen: 3},
	OptionBlock1:        {format: ValueUint, minLen: 0, maxLen: 3},
	OptionSize2:         {format: ValueUint, minLen: 0, maxLen: 4},
	OptionProxyURI:      {format: ValueString, minLen: 1, maxLen: 1034},
	OptionProxyScheme:   {format: ValueString, minLen: 1, maxLen: 255},
	OptionSize1:         {format: ValueUint, minLen: 0, maxLen: 4},
}

// Format is the registered value format of the number, ValueUnknown for
// numbers outside the well-known set.
func (c OptionCode) Format() ValueFormat {
	if def, ok := optionDefs[c]; ok {
		return def.format
	}
	return ValueUnknown
}

// Returns an array of options given an option code
func (m *CoAPMessage) GetOptions(id OptionCode) []*CoAPMessageOption {
	var opts []*CoAPMessageOption
	for _, v := range m.ensureOptions().Get(id) {
		opts = append(opts, NewOption(id, v))
	}
	return opts
}

// Returns the first option found for a given option code
func (m *CoAPMessage) GetOption(id OptionCode) *CoAPMessageOption {
	o := m.ensureOptions()
	if !o.Has(id) {
		return nil
	}
	return NewOption(id, o.GetFirst(id))
}

func (m *CoAPMessage) GetOptionAsString(id OptionCode) (str string) {
	if opt := m.GetOption(id); opt != nil {
		return opt.StringValue()
	}
	return
}

// Attempts to return the string values of an Option
func (m *CoAPMessage) GetOptionsAsString(id OptionCode) (str []string) {
	for _, o := range m.GetOptions(id) {
		str = append(str, o.StringValue())
	}
	return
}

// Add an Option to the message. A repeatable option is appended after any
// existing values of the same number; a non-repeatable option replaces
// them.
func (m *CoAPMessage) AddOption(code OptionCode, value interface{}) error {
	def, ok := optionDefs[code]
	if ok && def.repeatable {
		return m.ensureOptions().Insert(code, valueToBytes(value))
	}
	return m.ensureOptions().Set(code, valueToBytes(value))
}

// Add an array of Options to the message.
func (m *CoAPMessage) AddOptions(opts []*CoAPMessageOption) error {
	for _, opt := range opts {
		if err := m.AddOption(opt.Code, opt.Value); err != nil {
			return err
		}
	}
	return nil
}

// Copies the given list of options from another message to this one
func (m *CoAPMessage) CloneOptions(cm *CoAPMessage, opts ...OptionCode) error {
	for _, opt := range opts {
		if err := m.AddOptions(cm.GetOptions(opt)); err != nil {
			return err
		}
	}
	return nil
}

// Removes an Option
func (m *CoAPMessage) RemoveOptions(id OptionCode) {
	m.ensureOptions().Remove(id)
}

func (m *CoAPMessage) GetURIHost() string {
	option := m.GetOption(OptionURIHost)

	if option == nil {
		return "localhost"
	}

	return option.StringValue()
}

func (m *CoAPMessage) SetURIHost(host string) error {
	return m.AddOption(OptionURIHost, host)
}

func (m *CoAPMessage) GetURIPort() int {
	option := m.GetOption(OptionURIPort)

	if option == nil {
		return 0
	}

	return option.IntValue()
}

func (m *CoAPMessage) SetURIPort(port int) error {
	return m.AddOption(OptionURIPort, port)
}

func (m *CoAPMessage) GetURIPath() string {
	opts := m.GetOptionsAsString(OptionURIPath)

	return "/" + strings.Join(opts, "/")
}

// SetURIPath stores one Uri-Path option per path segment.
func (m *CoAPMessage) SetURIPath(fullPath string) error {
	m.RemoveOptions(OptionURIPath)

	for _, path := range strings.Split(fullPath, "/") {
		if path != "" {
			if err := m.AddOption(OptionURIPath, path); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *CoAPMessage) GetURIQueryString() string {
	var query []string
	for _, v := range m.GetOptionsAsString(OptionURIQuery) {
		query = append(query, escapeOneQuery(v))
	}

	return strings.Join(query, "&")
}

func escapeOneQuery(q string) string {
	index := strings.Index(q, "=")
	if index > 0 {
		return url.QueryEscape(q[:index]) + "=" + url.QueryEscape(q[index+1:])
	}
	return ""
}

func (m *CoAPMessage) GetURIQueryArray() []string {
	return m.GetOptionsAsString(OptionURIQuery)
}

func (m *CoAPMessage) GetURIQuery(q string) string {
	for _, v := range m.GetURIQueryArray() {
		kv := strings.SplitN(v, "=", 2)
		if len(kv) == 2 && kv[0] == q {
			return kv[1]
		}
	}

	return ""
}

func (m *CoAPMessage) SetURIQuery(k string, v string) error {
	return m.AddOption(OptionURIQuery, k+"="+v)
}

func (m *CoAPMessage) GetURI(host string) string {
	result := "coap://" + host + m.GetURIPath()
	query := m.GetURIQueryString()
	if len(query) > 0 {
		result += "?" + query
	}
	return result
}

func (m *CoAPMessage) SetMediaType(mt MediaType) error {
	return m.AddOption(OptionContentFormat, mt)
}

func (m *CoAPMessage) GetMediaType() (MediaType, bool) {
	option := m.GetOption(OptionContentFormat)
	if option == nil {
		return 0, false
	}
	return MediaType(option.IntValue()), true
}

func (m *CoAPMessage) SetAccept(mt MediaType) error {
	return m.AddOption(OptionAccept, mt)
}

func (m *CoAPMessage) GetAccept() (MediaType, bool) {
	option := m.GetOption(OptionAccept)
	if option == nil {
		return 0, false
	}
	return MediaType(option.IntValue()), true
}

func (m *CoAPMessage) SetMaxAge(seconds uint32) error {
	return m.AddOption(OptionMaxAge, seconds)
}

// GetMaxAge falls back to the protocol default of 60 seconds when the
// option is absent.
func (m *CoAPMessage) GetMaxAge() uint32 {
	option := m.GetOption(OptionMaxAge)
	if option == nil {
		return DefaultMaxAge
	}
	return uint32(option.IntValue())
}

// SetObserve registers (0) or deregisters (1) an observation, or carries
// the server's notification sequence number. The value is capped at 3
// bytes on the wire.
func (m *CoAPMessage) SetObserve(value uint32) error {
	if value > 0xffffff {
		return cerr.OptionValueTooLarge
	}
	return m.AddOption(OptionObserve, value)
}

func (m *CoAPMessage) GetObserve() (uint32, bool) {
	option := m.GetOption(OptionObserve)
	if option == nil {
		return 0, false
	}
	return uint32(option.IntValue()), true
}

func (m *CoAPMessage) AddETag(etag []byte) error {
	return m.AddOption(OptionEtag, etag)
}

func (m *CoAPMessage) GetETags() [][]byte {
	return m.ensureOptions().Get(OptionEtag)
}

func (m *CoAPMessage) AddIfMatch(etag []byte) error {
	return m.AddOption(OptionIfMatch, etag)
}

func (m *CoAPMessage) GetIfMatch() [][]byte {
	return m.ensureOptions().Get(OptionIfMatch)
}

func (m *CoAPMessage) SetIfNoneMatch() error {
	return m.AddOption(OptionIfNoneMatch, nil)
}

func (m *CoAPMessage) HasIfNoneMatch() bool {
	return m.ensureOptions().Has(OptionIfNoneMatch)
}

func (m *CoAPMessage) SetSize1(size uint32) error {
	return m.AddOption(OptionSize1, size)
}

func (m *CoAPMessage) GetSize1() (uint32, bool) {
	option := m.GetOption(OptionSize1)
	if option == nil {
		return 0, false
	}
	return uint32(option.IntValue()), true
}

func (m *CoAPMessage) SetSize2(size uint32) error {
	return m.AddOption(OptionSize2, size)
}

func (m *CoAPMessage) GetSize2() (uint32, bool) {
	option := m.GetOption(OptionSize2)
	if option == nil {
		return 0, false
	}
	return uint32(option.IntValue()), true
}

func (m *CoAPMessage) GetBlock1() (*Block, error) {
	option := m.GetOption(OptionBlock1)
	if option == nil {
		return nil, nil
	}
	return NewBlockFromInt(uint32(option.IntValue()))
}

func (m *CoAPMessage) SetBlock1(block *Block) error {
	value, err := block.ToInt()
	if err != nil {
		return err
	}
	return m.AddOption(OptionBlock1, value)
}

func (m *CoAPMessage) GetBlock2() (*Block, error) {
	option := m.GetOption(OptionBlock2)
	if option == nil {
		return nil, nil
	}
	return NewBlockFromInt(uint32(option.IntValue()))
}

func (m *CoAPMessage) SetBlock2(block *Block) error {
	value, err := block.ToInt()
	if err != nil {
		return err
	}
	return m.AddOption(OptionBlock2, value)
}

func (m *CoAPMessage) SetProxyURI(uri string) error {
	return m.AddOption(OptionProxyURI, uri)
}

func (m *CoAPMessage) GetProxyURI() string {
	return m.GetOptionAsString(OptionProxyURI)
}

func (m *CoAPMessage) SetProxyScheme(scheme string) error {
	return m.AddOption(OptionProxyScheme, scheme)
}

func (m *CoAPMessage) GetProxyScheme() string {
	return m.GetOptionAsString(OptionProxyScheme)
}

func (m *CoAPMessage) IsProxied() bool {
	return m.GetOption(OptionProxyURI) != nil
}
