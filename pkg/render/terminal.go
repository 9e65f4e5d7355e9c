package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw converts the framebuffer to terminal cells and draws them on the
// screen. Palette indices are resolved through the current palette.
// The framebuffer height should be 2x the terminal height.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	// Each terminal row represents 2 framebuffer rows
	// We use ▀ (upper half block) with fg=top color and bg=bottom color

	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1
		if topY >= fb.Height {
			break
		}

		for col := area.Min.X; col < area.Max.X && col-area.Min.X < fb.Width; col++ {
			x := col - area.Min.X
			top := fb.Palette[fb.GetPixel(x, topY)]
			bot := fb.Palette[fb.GetPixel(x, botY)]

			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(top),
					Bg: cellColor(bot),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// DrawStatus writes a single line of text at the given cell position.
// It is used for the message line under the view.
func DrawStatus(scr uv.Screen, x, y int, text string, fg color.Color) {
	for i, r := range text {
		scr.SetCell(x+i, y, &uv.Cell{
			Content: string(r),
			Width:   1,
			Style:   uv.Style{Fg: fg},
		})
	}
}

// cellColor converts a palette entry to a terminal color.
func cellColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}
