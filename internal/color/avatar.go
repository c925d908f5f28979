// Package color derives display colors for user avatars.
package color

import (
	"fmt"
	"hash/fnv"
	"math"
)

// Fixed saturation and lightness keep every generated color readable
// against the app's light background; only the hue varies per user.
const (
	avatarSaturation = 0.4
	avatarLightness  = 0.65
)

// ForUser returns a stable hex color for a user ID. The same ID always maps
// to the same color, so avatars keep their color across sessions and
// devices without storing anything.
func ForUser(userID string) string {
	h := fnv.New32a()
	h.Write([]byte(userID))
	hue := float64(h.Sum32() % 360)

	r, g, b := hslToRGB(hue, avatarSaturation, avatarLightness)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// hslToRGB converts hue (0-360), saturation and lightness (0-1) to 8-bit
// RGB channels.
func hslToRGB(hue, sat, light float64) (uint8, uint8, uint8) {
	chroma := (1 - math.Abs(2*light-1)) * sat
	sector := hue / 60
	x := chroma * (1 - math.Abs(math.Mod(sector, 2)-1))

	var r, g, b float64
	switch {
	case sector < 1:
		r, g, b = chroma, x, 0
	case sector < 2:
		r, g, b = x, chroma, 0
	case sector < 3:
		r, g, b = 0, chroma, x
	case sector < 4:
		r, g, b = 0, x, chroma
	case sector < 5:
		r, g, b = x, 0, chroma
	default:
		r, g, b = chroma, 0, x
	}

	m := light - chroma/2
	return uint8((r + m) * 255), uint8((g + m) * 255), uint8((b + m) * 255)
}
