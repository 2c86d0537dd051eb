package church

import (
	"image"
	"image/color"
	"image/png"
	"io"
)

const avatarSize = 32

//nolint:gochecknoglobals // Avatar palette.
var avatarPalette = []color.RGBA{
	{R: 0x4e, G: 0x79, B: 0xa7, A: 0xff},
	{R: 0xf2, G: 0x8e, B: 0x2b, A: 0xff},
	{R: 0x59, G: 0xa1, B: 0x4f, A: 0xff},
	{R: 0xb0, G: 0x7a, B: 0xa1, A: 0xff},
	{R: 0x76, G: 0xb7, B: 0xb2, A: 0xff},
}

// Avatar draws the deterministic placeholder portrait for member id: a
// colored disc on a light background.
func Avatar(id int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, avatarSize, avatarSize))
	bg := color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	fg := avatarPalette[id%len(avatarPalette)]
	c := avatarSize / 2
	r2 := (c - 2) * (c - 2)
	for y := range avatarSize {
		for x := range avatarSize {
			dx, dy := x-c, y-c
			if dx*dx+dy*dy <= r2 {
				img.Set(x, y, fg)
			} else {
				img.Set(x, y, bg)
			}
		}
	}
	return img
}

// WriteAvatar encodes Avatar(id) as PNG.
func WriteAvatar(w io.Writer, id int) error {
	return png.Encode(w, Avatar(id))
}
