package render

import (
	"fmt"
	"image/color"
)

// classColors follows the red/blue convention of the two-class demos, then
// cycles through further hues.
var classColors = []color.RGBA{
	{R: 0xe5, G: 0x48, B: 0x48, A: 0xff},
	{R: 0x3b, G: 0x6e, B: 0xd4, A: 0xff},
	{R: 0x3c, G: 0xb0, B: 0x4f, A: 0xff},
	{R: 0xf0, G: 0xa2, B: 0x2e, A: 0xff},
	{R: 0x8e, G: 0x4f, B: 0xc7, A: 0xff},
	{R: 0x2b, G: 0xb5, B: 0xb0, A: 0xff},
}

var internalColor = color.RGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 0xff}

func classColor(k int, leaf bool) color.RGBA {
	if !leaf {
		return internalColor
	}
	return classColors[k%len(classColors)]
}

// light blends c towards white for backgrounds.
func light(c color.RGBA) color.RGBA {
	mix := func(v uint8) uint8 { return uint8((int(v) + 2*0xff) / 3) }
	return color.RGBA{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: 0xff}
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
