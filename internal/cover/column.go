package cover

import (
	"image"
	"image/draw"
)

// BuildColumn stacks tiles top to bottom, cellHeight+margin apart. The
// result is one tile wide and tall enough for the last tile's shadow.
func BuildColumn(tiles []*image.RGBA, cellHeight, margin int) *image.RGBA {
	if len(tiles) == 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	ts := tiles[0].Bounds().Size()
	pad := ts.Y - cellHeight
	height := len(tiles)*cellHeight + (len(tiles)-1)*margin + pad

	col := image.NewRGBA(image.Rect(0, 0, ts.X, height))
	for i, t := range tiles {
		drawTile(col, t, i*(cellHeight+margin))
	}
	return col
}

// ExtendedColumn is a column rendered twice back to back so that a window
// of the base column height can be cut at any scroll offset in
// [0, Period()). Tiles are drawn cyclically over the whole buffer,
// including the slot before the first tile, so that shadows crossing the
// wrap point are identical to the ones inside the sequence.
type ExtendedColumn struct {
	buf    *image.RGBA
	base   int
	period int
	pad    int
}

// BuildExtendedColumn builds the doubled buffer for tiles. The buffer is
// 2*base+margin tall plus the shadow pad, where base is the height of the
// plain column.
func BuildExtendedColumn(tiles []*image.RGBA, cellHeight, margin int) *ExtendedColumn {
	n := len(tiles)
	if n == 0 {
		return &ExtendedColumn{buf: image.NewRGBA(image.Rect(0, 0, 0, 0))}
	}
	ts := tiles[0].Bounds().Size()
	pad := ts.Y - cellHeight
	step := cellHeight + margin
	base := n*cellHeight + (n-1)*margin
	period := base + margin
	height := 2*base + margin + pad

	buf := image.NewRGBA(image.Rect(0, 0, ts.X, height))

	// Every slot whose tile reaches into the buffer, in top-to-bottom order
	// so that each tile covers the shadow of the one above it.
	first := -((ts.Y + step - 1) / step)
	last := (height + step - 1) / step
	for j := first; j <= last; j++ {
		drawTile(buf, tiles[floorMod(j, n)], j*step)
	}

	return &ExtendedColumn{buf: buf, base: base, period: period, pad: pad}
}

// Base is the height of the plain column without its shadow pad.
func (c *ExtendedColumn) Base() int { return c.base }

// Period is the scroll distance after which the content repeats.
func (c *ExtendedColumn) Period() int { return c.period }

// Pad is the shadow pad carried below the cells.
func (c *ExtendedColumn) Pad() int { return c.pad }

// Image returns the whole buffer.
func (c *ExtendedColumn) Image() *image.RGBA { return c.buf }

// Window returns the rows [offset, offset+length+Pad()) as a view into the
// buffer. offset is reduced modulo Period(); length must not exceed Base().
func (c *ExtendedColumn) Window(offset, length int) *image.RGBA {
	if c.period == 0 {
		return c.buf
	}
	offset = floorMod(offset, c.period)
	length = min(length, c.base)
	r := image.Rect(0, offset, c.buf.Bounds().Dx(), offset+length+c.pad)
	return c.buf.SubImage(r).(*image.RGBA)
}

// drawTile composites t onto dst with its top edge at y, clipped to dst.
func drawTile(dst *image.RGBA, t *image.RGBA, y int) {
	r := t.Bounds().Sub(t.Bounds().Min).Add(image.Pt(0, y))
	if !r.Overlaps(dst.Bounds()) {
		return
	}
	draw.Draw(dst, r, t, t.Bounds().Min, draw.Over)
}

func floorMod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
