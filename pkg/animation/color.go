package animation

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/go-drift/motion/pkg/errors"
)

// Color is stored as ARGB (0xAARRGGBB).
type Color uint32

// RGBA8 constructs a Color from red, green, blue, alpha bytes (all 0-255).
func RGBA8(r, g, b, a uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// RGB constructs an opaque Color from red, green, blue bytes.
func RGB(r, g, b uint8) Color {
	return RGBA8(r, g, b, 0xFF)
}

// Channels returns the red, green, blue and alpha bytes.
func (c Color) Channels() (r, g, b, a uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c), uint8(c >> 24)
}

// String renders the color as rgba(r, g, b, a) with alpha in 0-1.
func (c Color) String() string {
	r, g, b, a := c.Channels()
	alpha := math.Round(float64(a)/255*1000) / 1000
	var sb strings.Builder
	sb.WriteString("rgba(")
	sb.WriteString(strconv.Itoa(int(r)))
	sb.WriteString(", ")
	sb.WriteString(strconv.Itoa(int(g)))
	sb.WriteString(", ")
	sb.WriteString(strconv.Itoa(int(b)))
	sb.WriteString(", ")
	sb.WriteString(strconv.FormatFloat(alpha, 'f', -1, 64))
	sb.WriteString(")")
	return sb.String()
}

// Common colors.
const (
	ColorTransparent = Color(0x00000000)
	ColorBlack       = Color(0xFF000000)
	ColorWhite       = Color(0xFFFFFFFF)
	ColorRed         = Color(0xFFFF0000)
	ColorGreen       = Color(0xFF00FF00)
	ColorBlue        = Color(0xFF0000FF)
)

// ParseColor parses CSS-style color strings: named colors ("red",
// "purple"), "transparent", "#rgb", "#rgba", "#rrggbb", "#rrggbbaa",
// "rgb(r, g, b)" and "rgba(r, g, b, a)" with alpha in 0-1.
func ParseColor(s string) (Color, error) {
	str := strings.ToLower(strings.TrimSpace(s))
	switch {
	case str == "":
		return 0, errors.Configf("color", "empty color string")
	case str == "transparent":
		return ColorTransparent, nil
	case strings.HasPrefix(str, "#"):
		return parseHexColor(s, str[1:])
	case strings.HasPrefix(str, "rgba(") && strings.HasSuffix(str, ")"):
		return parseRGBFunc(s, str[len("rgba("):len(str)-1], true)
	case strings.HasPrefix(str, "rgb(") && strings.HasSuffix(str, ")"):
		return parseRGBFunc(s, str[len("rgb("):len(str)-1], false)
	}
	if c, ok := colornames.Map[str]; ok {
		return RGBA8(c.R, c.G, c.B, c.A), nil
	}
	return 0, errors.Configf("color", "unrecognized color %q", s)
}

func parseHexColor(orig, hex string) (Color, error) {
	switch len(hex) {
	case 3, 4:
		// Expand shorthand digits: #abc -> #aabbcc.
		var sb strings.Builder
		for _, ch := range hex {
			sb.WriteRune(ch)
			sb.WriteRune(ch)
		}
		hex = sb.String()
	case 6, 8:
	default:
		return 0, errors.Configf("color", "bad hex color %q", orig)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, errors.Configf("color", "bad hex color %q", orig)
	}
	if len(hex) == 6 {
		return Color(0xFF000000 | uint32(n)), nil
	}
	// #rrggbbaa -> 0xaarrggbb
	return Color(uint32(n)>>8 | uint32(n)<<24), nil
}

func parseRGBFunc(orig, body string, hasAlpha bool) (Color, error) {
	parts := strings.Split(body, ",")
	want := 3
	if hasAlpha {
		want = 4
	}
	if len(parts) != want {
		return 0, errors.Configf("color", "%q needs %d components", orig, want)
	}
	var ch [3]uint8
	for i := range 3 {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return 0, errors.Configf("color", "bad component in %q", orig)
		}
		ch[i] = channelByte(f)
	}
	alpha := uint8(0xFF)
	if hasAlpha {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return 0, errors.Configf("color", "bad alpha in %q", orig)
		}
		alpha = channelByte(f * 255)
	}
	return RGBA8(ch[0], ch[1], ch[2], alpha), nil
}

// channelByte rounds and clamps a channel to 0-255.
func channelByte(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}
