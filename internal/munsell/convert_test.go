package munsell

import (
	"errors"
	"fmt"
	"testing"
)

// tableConverter is a fixed-lookup fake. Colors absent from the table
// are out of gamut.
type tableConverter struct {
	table map[RGB]Sample
}

func (c *tableConverter) Convert(color RGB) (Sample, error) {
	s, ok := c.table[color]
	if !ok {
		return Sample{}, fmt.Errorf("no renotation entry for %v: %w", color, ErrOutOfGamut)
	}
	return s, nil
}

type failingConverter struct{}

func (failingConverter) Convert(RGB) (Sample, error) {
	return Sample{}, errors.New("lookup table corrupt")
}

func TestConvertAll(t *testing.T) {
	conv := &tableConverter{table: map[RGB]Sample{
		{255, 0, 0}: NewSample(15, 5, 14),
		{0, 0, 255}: NewSample(270, 4, 10),
	}}

	samples, dropped, err := ConvertAll(conv, []RGB{
		{255, 0, 0},
		{1, 2, 3}, // not in table
		{0, 0, 255},
	})
	if err != nil {
		t.Fatalf("ConvertAll failed: %v", err)
	}
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	if samples[0].Hue != 15 || samples[1].Hue != 270 {
		t.Errorf("samples out of order or wrong: %v", samples)
	}
}

func TestConvertAllEmpty(t *testing.T) {
	samples, dropped, err := ConvertAll(&tableConverter{}, nil)
	if err != nil {
		t.Fatalf("ConvertAll on empty input failed: %v", err)
	}
	if len(samples) != 0 || dropped != 0 {
		t.Errorf("expected empty result, got %d samples %d dropped", len(samples), dropped)
	}
}

func TestConvertAllAbortsOnUnexpectedError(t *testing.T) {
	_, _, err := ConvertAll(failingConverter{}, []RGB{{1, 1, 1}})
	if err == nil {
		t.Fatal("expected conversion error to propagate")
	}
	if errors.Is(err, ErrOutOfGamut) {
		t.Error("unexpected error must not be classified as out of gamut")
	}
}
