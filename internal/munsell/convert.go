package munsell

import "errors"

// ErrOutOfGamut is returned by RGB converters when an sRGB triple falls
// outside the renotation gamut and has no Munsell equivalent. The
// pipeline treats such samples as missing: excluded, never imputed.
var ErrOutOfGamut = errors.New("munsell: color out of renotation gamut")

// RGB is an 8-bit-per-channel sRGB triple as collected from screen data.
type RGB struct {
	R, G, B uint8
}

// RGBConverter converts screen sRGB colors to Munsell cylindrical
// coordinates. The production implementation wraps the ASTM D1535
// renotation pipeline and lives outside this module; tests use fixed
// lookup fakes. Implementations return ErrOutOfGamut (possibly wrapped)
// for unconvertible inputs.
type RGBConverter interface {
	Convert(c RGB) (Sample, error)
}

// ConvertAll runs every RGB triple through conv and returns the samples
// that converted cleanly along with the count of out-of-gamut drops.
// Any other conversion error aborts and is returned.
func ConvertAll(conv RGBConverter, colors []RGB) ([]Sample, int, error) {
	samples := make([]Sample, 0, len(colors))
	dropped := 0
	for _, c := range colors {
		s, err := conv.Convert(c)
		if err != nil {
			if errors.Is(err, ErrOutOfGamut) {
				dropped++
				continue
			}
			return nil, dropped, err
		}
		samples = append(samples, s)
	}
	return samples, dropped, nil
}
