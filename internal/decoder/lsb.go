package decoder

import (
	"strconv"

	"github.com/nao1215/stegscan/internal/model"
	"github.com/nao1215/stegscan/internal/pixel"
)

// successThreshold is the confidence above which an internal method counts as a hit.
const successThreshold = 0.3

// defaultMultiBits is used when the requested bit count is out of range.
const defaultMultiBits = 2

// PackBits packs bits MSB-first into bytes. A trailing partial byte is dropped.
func PackBits(bits []uint8) []byte {
	out := make([]byte, len(bits)/8)
	for i := range out {
		var b byte
		for _, bit := range bits[i*8 : i*8+8] {
			b = b<<1 | bit&1
		}
		out[i] = b
	}
	return out
}

// LSBMethod names a single-bit LSB attempt.
func LSBMethod(channel, plane int) string {
	return "LSB (Channel: " + strconv.Itoa(channel) + ", Bit: " + strconv.Itoa(plane) + ")"
}

// MultiBitMethod names a multi-bit LSB attempt.
func MultiBitMethod(bits, channel int) string {
	return "Multi-bit LSB (Bits: " + strconv.Itoa(bits) + ", Channel: " + strconv.Itoa(channel) + ")"
}

// DecodeLSB reads one bit plane of one channel in row-major order.
// An out-of-range channel falls back to red and an out-of-range plane to 0.
// Alpha (channel 3) is only valid for images with an alpha channel.
func DecodeLSB(m *pixel.Matrix, plane, channel int) model.DecoderAttempt {
	if channel < 0 || channel >= m.Channels {
		channel = pixel.Red
	}
	if plane < 0 || plane > 7 {
		plane = 0
	}

	bits := make([]uint8, m.Len())
	for i := range bits {
		bits[i] = (m.Pix[i*m.Channels+channel] >> plane) & 1
	}

	return assessed(LSBMethod(channel, plane), PackBits(bits), map[string]string{
		"bit_plane":  strconv.Itoa(plane),
		"channel":    strconv.Itoa(channel),
		"total_bits": strconv.Itoa(len(bits)),
	})
}

// DecodeMultiBitLSB reads the lowest `bits` bits of every sample of one
// channel, least significant first within a sample. A bit count outside
// 1..4 falls back to 2. A channel the image does not have yields no data.
func DecodeMultiBitLSB(m *pixel.Matrix, bits, channel int) model.DecoderAttempt {
	if bits < 1 || bits > 4 {
		bits = defaultMultiBits
	}

	var stream []uint8
	if channel >= 0 && channel < m.Channels {
		stream = make([]uint8, 0, m.Len()*bits)
		for i := range m.Len() {
			v := m.Pix[i*m.Channels+channel]
			for b := range bits {
				stream = append(stream, (v>>b)&1)
			}
		}
	}

	return assessed(MultiBitMethod(bits, channel), PackBits(stream), map[string]string{
		"bits":       strconv.Itoa(bits),
		"channel":    strconv.Itoa(channel),
		"total_bits": strconv.Itoa(len(stream)),
	})
}

// assessed scores data and builds an attempt using the internal success rule.
func assessed(method string, data []byte, info map[string]string) model.DecoderAttempt {
	confidence := AssessDataValidity(data)
	return model.DecoderAttempt{
		Method:     method,
		Success:    confidence > successThreshold,
		Confidence: confidence,
		Data:       data,
		Info:       info,
	}
}
