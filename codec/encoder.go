package codec

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/klauspost/compress/zstd"
)

type Encoder struct {
	writer io.Writer
	kind   Kind
}

func NewEncoder(writer io.Writer, kind Kind) (encoder *Encoder) {
	return &Encoder{writer: writer, kind: kind}
}

// Encode writes one artifact. Each call produces a complete header and frame.
func (e *Encoder) Encode(value interface{}) (err error) {
	header := make([]byte, 0, headerLen)
	header = append(header, magic[:]...)
	header = append(header, byte(e.kind), Version)
	if _, err = e.writer.Write(header); err != nil {
		return err
	}

	zw, err := zstd.NewWriter(e.writer)
	if err != nil {
		return err
	}
	if err = rlp.Encode(zw, value); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
