package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/sbinet/npyio"

	"partobjaverse-viewer/internal/core/domain"
	ports "partobjaverse-viewer/internal/core/ports/output"
)

type npyLabelReader struct{}

// NewSemanticLabelReader creates a reader for per-face label .npy files
func NewSemanticLabelReader() ports.SemanticLabelReader {
	return npyLabelReader{}
}

// ReadSemanticLabels reads a 1-D integer array of any width and byte order.
// npyio parses the header; the body is decoded in the declared byte order.
// Callers check its length against the mesh face count.
func (npyLabelReader) ReadSemanticLabels(path string) (domain.SemanticLabels, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read semantic labels: %w", err)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, domain.ErrInvalidSemanticLabels, err)
	}
	if len(r.Header.Descr.Shape) != 1 {
		return nil, fmt.Errorf("%s: %w: shape %v", path, domain.ErrInvalidSemanticLabels, r.Header.Descr.Shape)
	}

	descr := r.Header.Descr.Type
	decode, ok := integerDecoders[strings.TrimLeft(descr, "<>|=")]
	if !ok {
		return nil, fmt.Errorf("%s: %w: dtype %s", path, domain.ErrInvalidSemanticLabels, descr)
	}
	var order binary.ByteOrder = binary.LittleEndian
	if strings.HasPrefix(descr, ">") {
		order = binary.BigEndian
	}
	labels, err := decode(f, order, r.Header.Descr.Shape[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, domain.ErrInvalidSemanticLabels, err)
	}
	return labels, nil
}

type labelDecoder func(body io.Reader, order binary.ByteOrder, n int) (domain.SemanticLabels, error)

// integerDecoders are keyed by numpy dtype without its byte order mark.
var integerDecoders = map[string]labelDecoder{
	"i1": decodeAs[int8],
	"i2": decodeAs[int16],
	"i4": decodeAs[int32],
	"i8": decodeAs[int64],
	"u1": decodeAs[uint8],
	"u2": decodeAs[uint16],
	"u4": decodeAs[uint32],
	"u8": decodeUint64,
}

type integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32
}

func decodeAs[T integer](body io.Reader, order binary.ByteOrder, n int) (domain.SemanticLabels, error) {
	data := make([]T, n)
	if err := binary.Read(body, order, data); err != nil {
		return nil, err
	}
	labels := make(domain.SemanticLabels, n)
	for i, v := range data {
		labels[i] = int64(v)
	}
	return labels, nil
}

// decodeUint64 folds labels above MaxInt64 onto the palette first so they
// keep the color unsigned modulo gives them.
func decodeUint64(body io.Reader, order binary.ByteOrder, n int) (domain.SemanticLabels, error) {
	data := make([]uint64, n)
	if err := binary.Read(body, order, data); err != nil {
		return nil, err
	}
	labels := make(domain.SemanticLabels, n)
	for i, v := range data {
		if v > math.MaxInt64 {
			v %= uint64(len(domain.Palette))
		}
		labels[i] = int64(v)
	}
	return labels, nil
}
