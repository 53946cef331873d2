package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ChenxingLi/evm-io-tracker/ioerrors"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/klauspost/compress/zstd"
)

type Decoder struct {
	reader io.Reader
	kind   Kind
}

func NewDecoder(reader io.Reader, kind Kind) *Decoder {
	return &Decoder{reader: reader, kind: kind}
}

// ReadHeader consumes and validates the artifact header.
func ReadHeader(r io.Reader) (Kind, byte, error) {
	var header [headerLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ioerrors.ErrBadArtifactHeader, err)
	}
	if !bytes.Equal(header[:len(magic)], magic[:]) {
		return 0, 0, fmt.Errorf("%w: magic %q", ioerrors.ErrBadArtifactHeader, header[:len(magic)])
	}
	kind, version := Kind(header[len(magic)]), header[len(magic)+1]
	if version != Version {
		return kind, version, fmt.Errorf("%w: version %d", ioerrors.ErrBadArtifactHeader, version)
	}
	return kind, version, nil
}

func (d *Decoder) Decode(value interface{}) error {
	kind, _, err := ReadHeader(d.reader)
	if err != nil {
		return err
	}
	if kind != d.kind {
		return fmt.Errorf("%w: got %s, want %s", ioerrors.ErrBadArtifactHeader, kind, d.kind)
	}
	zr, err := zstd.NewReader(d.reader)
	if err != nil {
		return err
	}
	defer zr.Close()
	return rlp.Decode(zr, value)
}
