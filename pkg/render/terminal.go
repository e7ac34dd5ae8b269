package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw presents the framebuffer on a terminal screen. Each terminal row
// shows two framebuffer rows as an upper half block (▀) with the top pixel
// as foreground and the bottom pixel as background.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.GetPixel(x, topY)),
					Bg: cellColor(fb.GetPixel(x, botY)),
				},
			})
		}
	}
}

// cellColor leaves cells outside the framebuffer uncolored.
func cellColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}
