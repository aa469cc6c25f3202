package coapcodec

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	cerr "github.com/coalalib/coapcodec/errors"
	humanize "github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// A Message object represents a CoAP message
type CoAPMessage struct {
	MessageID uint16
	Type      CoapType
	Code      CoapCode
	Payload   CoAPMessagePayload
	Token     []byte
	Options   *Options
}

func NewCoAPMessage(messageType CoapType, messageCode CoapCode) *CoAPMessage {
	return &CoAPMessage{
		MessageID: generateMessageID(),
		Type:      messageType,
		Code:      messageCode,
		Payload:   NewEmptyPayload(),
		Token:     generateToken(6),
		Options:   NewOptions(),
	}
}

func NewCoAPMessageId(messageType CoapType, messageCode CoapCode, messageID uint16) *CoAPMessage {
	return &CoAPMessage{
		MessageID: messageID,
		Type:      messageType,
		Code:      messageCode,
		Payload:   NewEmptyPayload(),
		Token:     generateToken(6),
		Options:   NewOptions(),
	}
}

// Converts an array of bytes to a Message object.
// An error is returned if a parsing error occurs.
// Token, option values and payload alias the input buffer.
func Deserialize(data []byte) (*CoAPMessage, error) {
	msg, err := deserialize(data)
	if err != nil {
		MetricParseErrors.Inc()
		return nil, err
	}
	MetricDeserializedMessages.Inc()
	return msg, nil
}

func deserialize(data []byte) (*CoAPMessage, error) {
	msg := &CoAPMessage{Options: NewOptions()}

	r := newPacketReader(data)

	header, err := r.Take(4)
	if err != nil {
		return nil, cerr.PacketLengthLessThan4
	}

	if header[DataHeader]>>6 != 1 {
		return nil, cerr.InvalidCoapVersion
	}

	msg.Type = CoapType(header[DataHeader] >> 4 & 0x03)
	tokenLength := int(header[DataHeader] & 0x0f)
	if tokenLength > MaxTokenLength {
		return nil, cerr.InvalidTokenLength
	}

	msg.Code = CoapCode(header[DataCode])
	msg.MessageID = binary.BigEndian.Uint16(header[DataMsgIDStart:DataMsgIDEnd])

	if tokenLength > 0 {
		token, err := r.Take(tokenLength)
		if err != nil {
			return nil, errors.Wrap(err, "token")
		}
		msg.Token = token
	}

	hasPayload, err := parseOptions(r, msg.Options)
	if err != nil {
		return nil, errors.Wrap(err, "options")
	}

	if hasPayload {
		payload, err := r.Take(r.Remaining())
		if err != nil {
			return nil, errors.Wrap(err, "payload")
		}
		msg.Payload = NewBytesPayload(payload)
	} else {
		msg.Payload = NewEmptyPayload()
	}

	return msg, nil
}

// Converts a message object to a byte array. Typically done prior to
// transmission.
func Serialize(msg *CoAPMessage) ([]byte, error) {
	if msg == nil {
		return nil, cerr.NilMessage
	}
	size, err := msg.MarshalSize()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	n, err := msg.MarshalTo(buf)
	if err != nil {
		return nil, err
	}
	MetricSerializedMessages.Inc()
	return buf[:n], nil
}

// MarshalSize is the exact number of bytes MarshalTo will produce.
func (m *CoAPMessage) MarshalSize() (int, error) {
	if err := validateMessage(m); err != nil {
		return 0, err
	}

	size := 4 + len(m.Token)
	prev := 0
	var sizeErr error
	m.ensureOptions().Iterate(func(code OptionCode, value []byte) bool {
		if len(value) > MaxOptionHeaderValue {
			sizeErr = cerr.OptionValueTooLarge
			return false
		}
		delta := int(code) - prev
		size += 1 + optionHeaderSize(delta) + optionHeaderSize(len(value)) + len(value)
		prev = int(code)
		return true
	})
	if sizeErr != nil {
		return 0, sizeErr
	}

	if m.Payload != nil && m.Payload.Length() > 0 {
		size += 1 + m.Payload.Length()
	}
	return size, nil
}

// MarshalTo serializes the message into the caller's buffer and returns
// the number of bytes written. On error the buffer prefix is left in an
// unspecified state.
func (m *CoAPMessage) MarshalTo(buf []byte) (int, error) {
	if err := validateMessage(m); err != nil {
		return 0, err
	}

	w := newPacketWriter(buf)

	var header [4]byte
	header[DataHeader] = 1<<6 | uint8(m.Type)<<4 | 0x0f&uint8(len(m.Token))
	header[DataCode] = byte(m.Code)
	binary.BigEndian.PutUint16(header[DataMsgIDStart:DataMsgIDEnd], m.MessageID)

	if err := w.Write(header[:]); err != nil {
		return 0, err
	}
	if err := w.Write(m.Token); err != nil {
		return 0, err
	}
	if err := emitOptions(w, m.ensureOptions()); err != nil {
		return 0, err
	}

	if m.Payload != nil && m.Payload.Length() > 0 {
		if err := w.WriteByte(PayloadMarker); err != nil {
			return 0, err
		}
		if err := w.Write(m.Payload.Bytes()); err != nil {
			return 0, err
		}
	}

	return w.Position(), nil
}

func (m *CoAPMessage) ensureOptions() *Options {
	if m.Options == nil {
		m.Options = NewOptions()
	}
	return m.Options
}

func (m *CoAPMessage) Clone(includePayload bool) *CoAPMessage {
	cloneMessage := NewCoAPMessageId(m.Type, m.Code, m.MessageID)
	cloneMessage.Token = m.Token
	cloneMessage.Options = m.ensureOptions().Clone()
	if includePayload {
		cloneMessage.Payload = m.Payload
	}
	return cloneMessage
}

func (m *CoAPMessage) GetMethod() CoapMethod {
	switch m.Code {
	case GET:
		return CoapMethodGet
	case POST:
		return CoapMethodPost
	case PUT:
		return CoapMethodPut
	case DELETE:
		return CoapMethodDelete
	default:
		return 0
	}
}

// GetCodeString renders the code in class.detail form, e.g. "2.05".
func (m *CoAPMessage) GetCodeString() string {
	return fmt.Sprintf("%d.%02d", m.Code.Class(), m.Code.Detail())
}

func (m *CoAPMessage) GetTokenLength() uint8 {
	return uint8(len(m.Token))
}

func (m *CoAPMessage) GetTokenString() string {
	return string(m.Token)
}

func (m *CoAPMessage) GetMessageIDString() string {
	return strconv.Itoa(int(m.MessageID))
}

func (m *CoAPMessage) GetPayload() []byte {
	if m.Payload == nil {
		return []byte{}
	}
	return m.Payload.Bytes()
}

func (m *CoAPMessage) SetStringPayload(s string) {
	m.Payload = NewStringPayload(s)
}

func (m *CoAPMessage) SetToken(t string) {
	m.Token = []byte(t)
}

func (m *CoAPMessage) IsRequest() bool {
	return m.Code.IsRequest()
}

func (m *CoAPMessage) ToReadableString() string {
	options := ""
	m.ensureOptions().Iterate(func(code OptionCode, value []byte) bool {
		options += fmt.Sprintf("%v: '%v' ", optionCodeToString(code), value)
		return true
	})
	options = strings.TrimRight(options, " ")

	return fmt.Sprintf(
		"%v\t%v\t%x\t%v\t%v\t[%v]",
		typeString(m.Type),
		m.Code.String(),
		m.Token,
		m.MessageID,
		humanize.Bytes(uint64(len(m.GetPayload()))),
		options)
}
