package coapcodec_test

import (
	"bytes"
	"encoding/binary"

	. "github.com/onsi/ginkgo/extensions/table"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/coalalib/coapcodec"
)

var _ = Describe("Message", func() {
	Describe("Serialize message", func() {
		var (
			message  *CoAPMessage
			datagram []byte
			err      error
		)

		BeforeEach(func() {
			message = NewCoAPMessage(CON, GET)
			datagram, err = Serialize(message)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			message = nil
		})

		Context("With correct Message ID", func() {
			It("Should correct serialize message id", func() {
				uint16DatagramSlice := binary.BigEndian.Uint16(datagram[2:4])
				Expect(uint16DatagramSlice).Should(Equal(message.MessageID))
			})
		})

		Context("With correct Version", func() {
			It("Should correct serialize version", func() {
				Expect(datagram[0] >> 6).Should(Equal(uint8(1)))
			})
		})

		Context("With Type", func() {
			DescribeTable("Check each type",
				func(expectedType CoapType) {
					message.Type = expectedType
					datagram, err = Serialize(message)
					Expect(err).NotTo(HaveOccurred())
					Expect(CoapType(datagram[0] >> 4 & 0x03)).Should(Equal(expectedType))
				},
				Entry("CON", CON),
				Entry("NON", NON),
				Entry("ACK", ACK),
				Entry("RST", RST),
			)
		})

		Context("With Code", func() {
			DescribeTable("Check each code",
				func(expectedCode CoapCode) {
					message.Code = expectedCode
					datagram, err = Serialize(message)
					Expect(err).NotTo(HaveOccurred())
					Expect(CoapCode(datagram[1])).Should(Equal(expectedCode))
				},
				Entry("GET", GET),
				Entry("POST", POST),
				Entry("PUT", PUT),
				Entry("DELETE", DELETE),
				Entry("Content", CoapCodeContent),
				Entry("NotFound", CoapCodeNotFound),
			)
		})

		Context("With Token", func() {
			It("Should write the token length and bytes", func() {
				Expect(int(datagram[0] & 0x0f)).Should(Equal(len(message.Token)))
				Expect(datagram[4 : 4+len(message.Token)]).Should(Equal(message.Token))
			})
		})
	})

	Describe("Round trip", func() {
		It("Should preserve options and payload", func() {
			message := NewCoAPMessage(CON, POST)
			Expect(message.SetURIPath("/device/42/state")).Should(Succeed())
			Expect(message.SetURIQuery("force", "true")).Should(Succeed())
			Expect(message.SetMediaType(MediaTypeApplicationJSON)).Should(Succeed())
			message.SetStringPayload(`{"on":true}`)

			datagram, err := Serialize(message)
			Expect(err).NotTo(HaveOccurred())

			parsed, err := Deserialize(datagram)
			Expect(err).NotTo(HaveOccurred())

			Expect(parsed.MessageID).Should(Equal(message.MessageID))
			Expect(parsed.Type).Should(Equal(message.Type))
			Expect(parsed.Code).Should(Equal(message.Code))
			Expect(parsed.Token).Should(Equal(message.Token))
			Expect(parsed.GetURIPath()).Should(Equal("/device/42/state"))
			Expect(parsed.GetURIQuery("force")).Should(Equal("true"))
			mt, ok := parsed.GetMediaType()
			Expect(ok).Should(BeTrue())
			Expect(mt).Should(Equal(MediaTypeApplicationJSON))
			Expect(parsed.Payload.String()).Should(Equal(`{"on":true}`))
			Expect(parsed.Options.Equal(message.Options)).Should(BeTrue())
		})

		It("Should be deterministic", func() {
			message := NewCoAPMessage(CON, GET)
			Expect(message.SetURIPath("/a/b/c")).Should(Succeed())
			Expect(message.SetURIQuery("x", "1")).Should(Succeed())

			first, err := Serialize(message)
			Expect(err).NotTo(HaveOccurred())
			second, err := Serialize(message)
			Expect(err).NotTo(HaveOccurred())
			Expect(bytes.Equal(first, second)).Should(BeTrue())
		})

		It("Should keep repeated option values in insertion order", func() {
			message := NewCoAPMessageId(NON, GET, 7)
			message.Token = nil
			Expect(message.SetURIQuery("a", "1")).Should(Succeed())
			Expect(message.SetURIQuery("b", "2")).Should(Succeed())

			datagram, err := Serialize(message)
			Expect(err).NotTo(HaveOccurred())

			parsed, err := Deserialize(datagram)
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed.GetURIQueryArray()).Should(Equal([]string{"a=1", "b=2"}))
		})
	})

	Describe("MarshalTo", func() {
		It("Should report the exact size", func() {
			message := NewCoAPMessage(CON, GET)
			Expect(message.SetURIPath("/well/known")).Should(Succeed())
			message.SetStringPayload("ping")

			size, err := message.MarshalSize()
			Expect(err).NotTo(HaveOccurred())

			buf := make([]byte, size)
			n, err := message.MarshalTo(buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).Should(Equal(size))
		})

		It("Should fail when the buffer cannot hold the message", func() {
			message := NewCoAPMessage(CON, GET)
			message.SetStringPayload("payload that will not fit")

			buf := make([]byte, 8)
			_, err := message.MarshalTo(buf)
			Expect(err).To(HaveOccurred())
		})
	})
})
