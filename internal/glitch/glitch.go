// Package glitch implements the destructive byte-corruption media effect:
// a number of random single-byte writes scattered across a buffer, which is
// usually enough to datamosh a video or mangle an image while keeping the
// container decodable.
package glitch

import "math/rand/v2"

// Source supplies the random draws for corruption positions and values.
// *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

type sysSource struct{}

func (sysSource) IntN(n int) int { return rand.IntN(n) }

// Destroy returns a corrupted copy of data with up to times random bytes
// overwritten by random values. The input is never modified and the output
// always has the same length. A nil src uses the shared math/rand source.
func Destroy(data []byte, times int, src Source) []byte {
	out := make([]byte, len(data))
	copy(out, data)

	if len(out) == 0 || times <= 0 {
		return out
	}
	if src == nil {
		src = sysSource{}
	}

	for i := 0; i < times; i++ {
		out[src.IntN(len(out))] = byte(src.IntN(256))
	}

	return out
}
