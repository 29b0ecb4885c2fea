/*
Package session implements the client-side session layer of the Ramblur chat
protocol.

This file derives a stable display color from a participant name. The hash
recurrence and modulo range are part of the rendering contract: every client
must compute the identical hue for the same name, so the recurrence is fixed
and must not be "improved".
*/
package session

import (
	"fmt"
	"unicode/utf16"
)

const (
	// colorSaturation is the fixed saturation percentage of derived colors.
	colorSaturation = 70

	// colorLightness is the fixed lightness percentage of derived colors.
	colorLightness = 60
)

// HSL is a display color in hue/saturation/lightness form.
type HSL struct {
	// H is the hue in degrees, always in [0, 360).
	H int

	// S is the saturation percentage.
	S int

	// L is the lightness percentage.
	L int
}

// ColorOf derives the display color for a name. It runs a base-31 polynomial
// rolling hash over the UTF-16 code units of the name under int32 wraparound,
// and maps the absolute value onto a hue. Two different names may collide on
// the same hue; that is accepted.
func ColorOf(name string) HSL {
	var acc int32

	for _, code := range utf16.Encode([]rune(name)) {
		acc = int32(code) + ((acc << 5) - acc)
	}

	// Widen before negating: -MinInt32 is not representable in int32.
	hash := int64(acc)
	if hash < 0 {
		hash = -hash
	}

	return HSL{
		H: int(hash % 360),
		S: colorSaturation,
		L: colorLightness,
	}
}

// String renders the color in CSS functional notation, e.g. "hsl(88, 70%, 60%)".
func (c HSL) String() string {
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", c.H, c.S, c.L)
}

// RGB converts the color to 8-bit red/green/blue channels, for consumers
// whose output medium has no native HSL support (e.g. ANSI terminals).
func (c HSL) RGB() (r, g, b uint8) {
	h := float64(c.H)
	s := float64(c.S) / 100
	l := float64(c.L) / 100

	chroma := (1 - abs(2*l-1)) * s
	x := chroma * (1 - abs(mod2(h/60)-1))
	m := l - chroma/2

	var rf, gf, bf float64
	switch {
	case h < 60:
		rf, gf, bf = chroma, x, 0
	case h < 120:
		rf, gf, bf = x, chroma, 0
	case h < 180:
		rf, gf, bf = 0, chroma, x
	case h < 240:
		rf, gf, bf = 0, x, chroma
	case h < 300:
		rf, gf, bf = x, 0, chroma
	default:
		rf, gf, bf = chroma, 0, x
	}

	return uint8((rf + m) * 255), uint8((gf + m) * 255), uint8((bf + m) * 255)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// mod2 reduces v into [0, 2), the wrap used by the hue-sector formula.
func mod2(v float64) float64 {
	for v >= 2 {
		v -= 2
	}
	for v < 0 {
		v += 2
	}
	return v
}
