package eval

import (
	"encoding/binary"
	"math"
)

// buffer accumulates wasm binary output with LEB128 helpers.
type buffer struct {
	bytes []byte
}

func (b *buffer) appendByte(v byte) {
	b.bytes = append(b.bytes, v)
}

func (b *buffer) writeBytes(v []byte) {
	b.bytes = append(b.bytes, v...)
}

// writeU32 writes unsigned LEB128 encoding.
func (b *buffer) writeU32(v uint32) {
	for {
		byt := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			byt |= 0x80
		}
		b.appendByte(byt)
		if v == 0 {
			break
		}
	}
}

// writeI64 writes signed LEB128 encoding.
func (b *buffer) writeI64(v int64) {
	for {
		byt := byte(v & 0x7F)
		v >>= 7
		if (v == 0 && byt&0x40 == 0) || (v == -1 && byt&0x40 != 0) {
			b.appendByte(byt)
			break
		}
		b.appendByte(byt | 0x80)
	}
}

// writeI32 writes signed LEB128 encoding.
func (b *buffer) writeI32(v int32) {
	b.writeI64(int64(v))
}

func (b *buffer) writeF32(v float32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	b.writeBytes(buf[:])
}

func (b *buffer) writeF64(v float64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	b.writeBytes(buf[:])
}

func (b *buffer) writeName(s string) {
	b.writeU32(uint32(len(s)))
	b.writeBytes([]byte(s))
}

// writeSection frames content as a section with the given id.
func (b *buffer) writeSection(id byte, content *buffer) {
	b.appendByte(id)
	b.writeU32(uint32(len(content.bytes)))
	b.writeBytes(content.bytes)
}
