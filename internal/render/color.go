package render

import (
	"image/color"
	"strconv"
	"strings"
)

// ParseColor parses "#rgb" or "#rrggbb". Anything else yields FallbackColor.
func ParseColor(s string) color.RGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return FallbackColor
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return FallbackColor
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}
}
