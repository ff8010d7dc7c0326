package viz

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Braille cells hold 2×4 dots at Unicode offset 0x2800:
//
//	1 4
//	2 5
//	3 6
//	7 8
var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank rune = 0x2800

// Canvas is a grid of Braille characters addressed in dots. A canvas of
// Width×Height cells has (2·Width)×(4·Height) dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Dots returns the canvas size in dots.
func (c *Canvas) Dots() (w, h int) { return 2 * c.Width, 4 * c.Height }

func (c *Canvas) cell(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col, row = x/2, y/4
	return row, col, col < c.Width && row < c.Height
}

// Set turns on the dot at (x, y). Dots outside the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if row, col, ok := c.cell(x, y); ok {
		c.Grid[row][col] |= dotBits[y%4][x%2]
	}
}

func (c *Canvas) IsSet(x, y int) bool {
	row, col, ok := c.cell(x, y)
	return ok && c.Grid[row][col]&dotBits[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawMark draws a small cross centred on (x, y).
func (c *Canvas) DrawMark(x, y int) {
	c.DrawLine(x-1, y, x+1, y)
	c.DrawLine(x, y-1, x, y+1)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Viewport maps the inertial x-z plane onto canvas dots with z pointing up.
type Viewport struct {
	Scale  float64 // dots per metre
	OX, OY int     // dot position of the inertial origin
}

// FitViewport centres the origin and scales so that a disc of radius reach
// fits the canvas with a margin.
func FitViewport(c *Canvas, reach float64) Viewport {
	w, h := c.Dots()
	if reach <= 0 {
		reach = 1
	}
	return Viewport{
		Scale: math.Min(float64(w), float64(h)) / (2.2 * reach),
		OX:    w / 2,
		OY:    h / 2,
	}
}

func (v Viewport) Dot(p mgl64.Vec3) (x, y int) {
	return v.OX + int(math.Round(p.X()*v.Scale)), v.OY - int(math.Round(p.Z()*v.Scale))
}

func (v Viewport) Line(c *Canvas, a, b mgl64.Vec3) {
	x0, y0 := v.Dot(a)
	x1, y1 := v.Dot(b)
	c.DrawLine(x0, y0, x1, y1)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
