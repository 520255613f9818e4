package text

import (
	"compress/flate"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/lychee-technology/rowbase"
)

// openWriter wraps w through the compression stream factory properties.Compression
// selects, returning a flush-and-close chain the caller must close to
// guarantee trailing bytes are flushed. None returns w itself wrapped in a
// no-op closer.
func openWriter(w io.Writer, kind rowbase.CompressionKind) (io.WriteCloser, error) {
	switch kind {
	case rowbase.CompressionNone:
		return nopWriteCloser{w}, nil
	case rowbase.CompressionDeflate:
		return flate.NewWriter(w, flate.DefaultCompression)
	case rowbase.CompressionGZip:
		return gzip.NewWriterLevel(w, gzip.DefaultCompression)
	default:
		return nil, rowbase.NewInvalidPropertiesError("textual codec: unknown compression kind")
	}
}

// openReader wraps r through the inverse decompression stream.
func openReader(r io.Reader, kind rowbase.CompressionKind) (io.ReadCloser, error) {
	switch kind {
	case rowbase.CompressionNone:
		return io.NopCloser(r), nil
	case rowbase.CompressionDeflate:
		return flate.NewReader(r), nil
	case rowbase.CompressionGZip:
		return gzip.NewReader(r)
	default:
		return nil, rowbase.NewInvalidPropertiesError("textual codec: unknown compression kind")
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
