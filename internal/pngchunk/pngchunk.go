// Package pngchunk implements the PNG container framing: the 8-byte
// signature, the {length, type, data, crc} chunk record, and the read/write
// state machine over a full chunk stream. CRC-32 itself is consumed from
// the standard library's hash/crc32; no third-party CRC-32 implementation
// exists to reach for instead.
package pngchunk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// Signature is the fixed 8-byte PNG file signature.
var Signature = [8]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

const maxChunkLen = 0x7fffffff

// Sentinel errors for the read-side state machine, named after §4.15.
var (
	ErrBadSignature   = errors.New("pngchunk: bad signature")
	ErrLengthOverflow = errors.New("pngchunk: chunk length overflow")
	ErrCrcMismatch    = errors.New("pngchunk: crc mismatch on critical chunk")
	ErrPrematureEof   = errors.New("pngchunk: premature eof")
	ErrMissingIhdr    = errors.New("pngchunk: missing IHDR")
	ErrMissingIdat    = errors.New("pngchunk: missing IDAT")
	ErrIendNotLast    = errors.New("pngchunk: IEND is not the final chunk")
)

// Chunk is one {type, data} record; CRC is derived, never stored, so it can
// never go stale after a caller mutates Data.
type Chunk struct {
	Type string
	Data []byte
}

// CRC returns CRC32(Type ∥ Data) per §4.1.
func (c Chunk) CRC() uint32 {
	h := crc32.NewIEEE()
	h.Write([]byte(c.Type))
	h.Write(c.Data)
	return h.Sum32()
}

// IsCritical reports whether the chunk's type has an uppercase first
// letter (§GLOSSARY "critical chunk").
func (c Chunk) IsCritical() bool {
	if len(c.Type) == 0 {
		return false
	}
	return c.Type[0] >= 'A' && c.Type[0] <= 'Z'
}

// Stream is an ordered sequence of chunks, with IHDR first and IEND last.
type Stream []Chunk

// AncillaryCrcWarning is returned alongside a successfully parsed Stream
// when one or more ancillary chunks failed their CRC check; parsing
// tolerates these per §4.3/§7 rather than failing.
type AncillaryCrcWarning struct {
	ChunkType string
	Index     int
}

func (w AncillaryCrcWarning) Error() string {
	return fmt.Sprintf("pngchunk: crc mismatch on ancillary chunk %q at index %d (tolerated)", w.ChunkType, w.Index)
}

// ReadAll verifies the signature and parses every chunk up to and
// including IEND. It returns the parsed stream and, in warnings, any
// tolerated ancillary CRC mismatches encountered along the way.
func ReadAll(data []byte) (stream Stream, warnings []error, err error) {
	if len(data) < 8 {
		return nil, nil, ErrPrematureEof
	}
	for i := 0; i < 8; i++ {
		if data[i] != Signature[i] {
			return nil, nil, ErrBadSignature
		}
	}
	pos := 8

	sawIhdr := false
	sawIdat := false
	sawIend := false

	for pos < len(data) {
		if sawIend {
			return nil, nil, ErrIendNotLast
		}
		if pos+8 > len(data) {
			return nil, nil, ErrPrematureEof
		}
		length64 := binary.BigEndian.Uint32(data[pos : pos+4])
		if length64 > maxChunkLen {
			return nil, nil, ErrLengthOverflow
		}
		length := int(length64)
		typ := string(data[pos+4 : pos+8])
		pos += 8

		if pos+length+4 > len(data) {
			return nil, nil, ErrPrematureEof
		}
		chunkData := make([]byte, length)
		copy(chunkData, data[pos:pos+length])
		pos += length

		crcStored := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4

		c := Chunk{Type: typ, Data: chunkData}
		if c.CRC() != crcStored {
			if c.IsCritical() {
				return nil, nil, ErrCrcMismatch
			}
			warnings = append(warnings, AncillaryCrcWarning{ChunkType: typ, Index: len(stream)})
		}

		switch typ {
		case "IHDR":
			sawIhdr = true
		case "IDAT":
			sawIdat = true
		case "IEND":
			sawIend = true
		}

		stream = append(stream, c)
	}

	if !sawIhdr {
		return nil, nil, ErrMissingIhdr
	}
	if !sawIdat {
		return nil, nil, ErrMissingIdat
	}
	if !sawIend {
		return nil, nil, ErrPrematureEof
	}
	return stream, warnings, nil
}

// WriteAll emits the signature followed by every chunk as
// length(BE) ∥ type ∥ data ∥ crc(BE).
func WriteAll(stream Stream) []byte {
	size := 8
	for _, c := range stream {
		size += 12 + len(c.Data)
	}
	out := make([]byte, 0, size)
	out = append(out, Signature[:]...)

	var lenBuf, crcBuf [4]byte
	for _, c := range stream {
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(c.Data)))
		out = append(out, lenBuf[:]...)
		out = append(out, []byte(c.Type)...)
		out = append(out, c.Data...)
		binary.BigEndian.PutUint32(crcBuf[:], c.CRC())
		out = append(out, crcBuf[:]...)
	}
	return out
}

// ConcatenatedIDAT concatenates the payloads of every IDAT chunk in their
// original order, forming the single logical zlib stream IDATs share.
func ConcatenatedIDAT(stream Stream) []byte {
	var out []byte
	for _, c := range stream {
		if c.Type == "IDAT" {
			out = append(out, c.Data...)
		}
	}
	return out
}

// Find returns the first chunk of the given type, if any.
func (s Stream) Find(typ string) (Chunk, bool) {
	for _, c := range s {
		if c.Type == typ {
			return c, true
		}
	}
	return Chunk{}, false
}
