// Package zlibcodec wraps deflate/inflate in zlib framing, reusing
// Deflate's output buffers through a sync.Pool; a fresh zlib writer or
// reader is created per call. The underlying codec is
// github.com/klauspost/compress/zlib rather than compress/zlib.
package zlibcodec

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// Level is an implementation-independent deflate intensity dial. The
// mapping onto concrete klauspost/compress/zlib levels is fixed below so
// tests can pin expected byte lengths.
type Level int

const (
	Fastest Level = iota
	Fast
	Default
	Maximum
	Ultra
)

// AllLevels enumerates the five levels in ascending-intensity order.
func AllLevels() []Level { return []Level{Fastest, Fast, Default, Maximum, Ultra} }

func (l Level) String() string {
	switch l {
	case Fastest:
		return "Fastest"
	case Fast:
		return "Fast"
	case Default:
		return "Default"
	case Maximum:
		return "Maximum"
	case Ultra:
		return "Ultra"
	default:
		return "Unknown"
	}
}

// zlibLevel returns the concrete klauspost/compress/zlib level for l.
// The mapping is fixed and documented so tests can pin expected
// compressed sizes with tolerance.
func (l Level) zlibLevel() int {
	switch l {
	case Fastest:
		return zlib.NoCompression
	case Fast:
		return zlib.BestSpeed
	case Default:
		return 6
	case Maximum:
		return 8
	case Ultra:
		return zlib.BestCompression
	default:
		return zlib.DefaultCompression
	}
}

// ErrCorruptZlib is returned by Inflate when the frame is malformed or
// decodes to zero bytes from non-empty input.
var ErrCorruptZlib = errors.New("zlibcodec: corrupt zlib frame")

var writerPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// Deflate writes a complete zlib frame (2-byte header, deflate body,
// Adler-32 trailer) over data at the given level.
func Deflate(data []byte, level Level) ([]byte, error) {
	buf := writerPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer writerPool.Put(buf)

	zw, err := zlib.NewWriterLevel(buf, level.zlibLevel())
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// Inflate reads a complete zlib frame and returns the decoded bytes.
func Inflate(compressed []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, ErrCorruptZlib
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, ErrCorruptZlib
	}
	if len(out) == 0 && len(compressed) > 0 {
		return nil, ErrCorruptZlib
	}
	return out, nil
}
