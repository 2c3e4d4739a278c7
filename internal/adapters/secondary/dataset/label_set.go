package dataset

import (
	"encoding/json"
	"fmt"
	"io"

	"partobjaverse-viewer/internal/core/domain"
	ports "partobjaverse-viewer/internal/core/ports/output"
)

type labelSetDecoder struct{}

// NewLabelSetDecoder creates a decoder for the semantic label document:
// {"<category>": {"<uid>": ["<part label>", ...], ...}, ...}
func NewLabelSetDecoder() ports.LabelSetDecoder {
	return labelSetDecoder{}
}

// DecodeLabelSet walks the token stream so categories and samples keep
// document order, which a map decode would lose.
func (labelSetDecoder) DecodeLabelSet(r io.Reader) (*domain.LabelSet, error) {
	dec := json.NewDecoder(r)

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var categories []domain.Category
	for dec.More() {
		name, err := stringToken(dec)
		if err != nil {
			return nil, err
		}
		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}

		cat := domain.Category{Name: name}
		for dec.More() {
			uid, err := stringToken(dec)
			if err != nil {
				return nil, err
			}
			var labels []string
			if err := dec.Decode(&labels); err != nil {
				return nil, fmt.Errorf("%w: labels of %s: %v", domain.ErrInvalidLabelSet, uid, err)
			}
			cat.Samples = append(cat.Samples, domain.Sample{UID: uid, PartLabels: labels})
		}

		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}

	ls, err := domain.NewLabelSet(categories)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidLabelSet, err)
	}
	return ls, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidLabelSet, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q, got %v", domain.ErrInvalidLabelSet, want, tok)
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidLabelSet, err)
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected key, got %v", domain.ErrInvalidLabelSet, tok)
	}
	return s, nil
}
