package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/golang/freetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/fuego-go/fuego/board"
)

const (
	cellPx   = 28
	marginPx = 34
)

var (
	boardColor = color.RGBA{R: 0xDC, G: 0xB3, B: 0x5C, A: 0xFF}
	lineColor  = color.RGBA{A: 0xFF}
	whiteStone = color.RGBA{R: 0xF8, G: 0xF8, B: 0xF8, A: 0xFF}
)

// WritePNG draws the position as a PNG image: wooden background, grid,
// star points, stones, and coordinate labels.
func WritePNG(w io.Writer, pos *board.Position) error {
	size := pos.Size()
	side := 2*marginPx + (size-1)*cellPx
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: boardColor}, image.Point{}, draw.Src)

	for i := 0; i < size; i++ {
		p := marginPx + i*cellPx
		hline(img, marginPx, side-marginPx, p)
		vline(img, marginPx, side-marginPx, p)
	}
	for _, sp := range starPoints(size) {
		cx := marginPx + sp[1]*cellPx
		cy := marginPx + (size-1-sp[0])*cellPx
		fillCircle(img, cx, cy, 3, lineColor)
	}

	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			c := pos.ColorAt(pos.PointAt(row, col))
			if c != board.Black && c != board.White {
				continue
			}
			cx := marginPx + col*cellPx
			cy := marginPx + (size-1-row)*cellPx
			fill := color.Color(lineColor)
			if c == board.White {
				fill = whiteStone
			}
			fillCircle(img, cx, cy, cellPx/2-1, fill)
			if c == board.White {
				ringCircle(img, cx, cy, cellPx/2-1, lineColor)
			}
		}
	}

	if err := drawLabels(img, size, side); err != nil {
		return err
	}
	return errors.WithMessage(png.Encode(w, img), "render: encoding png")
}

// drawLabels writes the column letters and row numbers along the edges.
func drawLabels(img *image.RGBA, size, side int) error {
	f, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return errors.WithMessage(err, "render: parsing font")
	}
	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(f)
	c.SetFontSize(11)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(image.NewUniform(lineColor))

	for col := 0; col < size; col++ {
		x := marginPx + col*cellPx - 3
		if _, err := c.DrawString(string(colLetter(col)), freetype.Pt(x, side-8)); err != nil {
			return errors.WithMessage(err, "render: drawing label")
		}
	}
	for row := 0; row < size; row++ {
		y := marginPx + (size-1-row)*cellPx + 4
		label := itoa(row + 1)
		if _, err := c.DrawString(label, freetype.Pt(6, y)); err != nil {
			return errors.WithMessage(err, "render: drawing label")
		}
	}
	return nil
}

func itoa(n int) string {
	if n >= 10 {
		return string([]byte{byte('0' + n/10), byte('0' + n%10)})
	}
	return string([]byte{byte('0' + n)})
}

func hline(img *image.RGBA, x0, x1, y int) {
	for x := x0; x <= x1; x++ {
		img.Set(x, y, lineColor)
	}
}

func vline(img *image.RGBA, y0, y1, x int) {
	for y := y0; y <= y1; y++ {
		img.Set(x, y, lineColor)
	}
}

func fillCircle(img *image.RGBA, cx, cy, r int, c color.Color) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				img.Set(cx+dx, cy+dy, c)
			}
		}
	}
}

func ringCircle(img *image.RGBA, cx, cy, r int, c color.Color) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			d := dx*dx + dy*dy
			if d <= r*r && d >= (r-1)*(r-1) {
				img.Set(cx+dx, cy+dy, c)
			}
		}
	}
}

// starPoints returns the (row, col) hoshi for the board size, zero-based.
func starPoints(size int) [][2]int {
	var edge int
	switch {
	case size >= 13:
		edge = 3
	case size >= 7:
		edge = 2
	default:
		return nil
	}
	low, high := edge, size-1-edge
	mid := size / 2
	pts := [][2]int{{low, low}, {low, high}, {high, low}, {high, high}}
	if size%2 == 1 {
		pts = append(pts, [2]int{mid, mid})
	}
	return pts
}
