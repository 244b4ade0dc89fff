package envelope

import (
	"bytes"
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// CompressionLevel controls the speed/ratio tradeoff.
type CompressionLevel int

const (
	CompressionFast    CompressionLevel = iota // Fastest, lower ratio
	CompressionDefault                         // Balanced
	CompressionBest                            // Best ratio, slower
)

var compressorPool = sync.Pool{
	New: func() interface{} {
		return lz4.NewWriter(nil)
	},
}

var decompressorPool = sync.Pool{
	New: func() interface{} {
		return lz4.NewReader(nil)
	},
}

func compress(data []byte, level CompressionLevel) ([]byte, error) {
	var buf bytes.Buffer
	w := compressorPool.Get().(*lz4.Writer)
	defer compressorPool.Put(w)

	w.Reset(&buf)

	var opt lz4.Option
	switch level {
	case CompressionFast:
		opt = lz4.CompressionLevelOption(lz4.Fast)
	case CompressionBest:
		opt = lz4.CompressionLevelOption(lz4.Level9)
	default:
		opt = lz4.CompressionLevelOption(lz4.Level4)
	}
	if err := w.Apply(opt); err != nil {
		return nil, errors.Wrap(err, "envelope: lz4 options")
	}

	if _, err := w.Write(data); err != nil {
		return nil, errors.Wrap(err, "envelope: lz4 write")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "envelope: lz4 close")
	}
	return buf.Bytes(), nil
}

func decompress(data []byte, limit int) ([]byte, error) {
	r := decompressorPool.Get().(*lz4.Reader)
	defer decompressorPool.Put(r)

	r.Reset(bytes.NewReader(data))

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, errors.Wrap(ErrDecompressionFailed, err.Error())
	}
	if n > int64(limit) {
		return nil, errors.Wrapf(ErrDecompressionFailed, "output exceeds %d bytes", limit)
	}
	return buf.Bytes(), nil
}
