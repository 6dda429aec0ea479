package cover

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"media-covers/internal/raster"
)

const (
	collageRows = 3
	collageCols = 3
	// collageSlots is the number of tile positions in the grid.
	collageSlots = collageRows * collageCols
	// minCollageTiles is the fewest distinct artworks the collage accepts.
	minCollageTiles = 3
)

// CollageOrder maps grid slots (column-major: column 0 rows 0-2, then
// column 1, then column 2) to input tile indices. The first artwork lands in
// the middle of the left column and the second in the middle of the centre
// column, the two most visible cells once the grid is rotated. Indices wrap
// modulo the number of available tiles.
var CollageOrder = [collageSlots]int{2, 0, 4, 3, 1, 5, 8, 7, 6}

// CanvasSize is the working resolution of every cover.
var CanvasSize = image.Pt(1920, 1080)

// CollageLayout holds the placement constants of the rotated grid.
type CollageLayout struct {
	Canvas        image.Point
	Tile          TileSpec
	Margin        int
	Rotation      float64
	Start         image.Point
	ColumnSpacing int
}

// DefaultCollageLayout is the standard 1920x1080 layout: 22px margins,
// columns tilted 15.8 degrees clockwise, the first column anchored at
// (835, -362) and 100px between column origins.
func DefaultCollageLayout() CollageLayout {
	return CollageLayout{
		Canvas:        CanvasSize,
		Tile:          DefaultTileSpec(),
		Margin:        22,
		Rotation:      -15.8,
		Start:         image.Pt(835, -362),
		ColumnSpacing: 100,
	}
}

// ColumnHeight is the height of one column of cells without shadow.
func (l CollageLayout) ColumnHeight() int {
	return collageRows*l.Tile.CellHeight + (collageRows-1)*l.Margin
}

// Anchor is the canvas point the centre of column col's cell stack is
// rotated about and placed at. Columns 1 and 2 carry fixed corrections that
// undo the drift the rotation introduces.
func (l CollageLayout) Anchor(col int) image.Point {
	cw := l.Tile.CellWidth
	x := l.Start.X + col*l.ColumnSpacing
	y := l.Start.Y + l.ColumnHeight()/2

	switch col {
	case 1:
		x += cw - 50
	case 2:
		x += 2*cw - 40
		y -= 155
	}
	return image.Pt(x+cw/2, y)
}

// ArrangeTiles applies CollageOrder. It needs at least three tiles and
// ignores any beyond nine.
func ArrangeTiles[T any](tiles []T) ([]T, error) {
	if len(tiles) < minCollageTiles {
		return nil, fmt.Errorf("%w: collage needs %d artworks, have %d", ErrInsufficientArtwork, minCollageTiles, len(tiles))
	}
	if len(tiles) > collageSlots {
		tiles = tiles[:collageSlots]
	}
	out := make([]T, collageSlots)
	for slot, idx := range CollageOrder {
		out[slot] = tiles[idx%len(tiles)]
	}
	return out, nil
}

// Compose arranges tiles into three columns and draws them onto dst.
func (l CollageLayout) Compose(b raster.Backend, dst draw.Image, tiles []*image.RGBA) error {
	arranged, err := ArrangeTiles(tiles)
	if err != nil {
		return err
	}
	for col := 0; col < collageCols; col++ {
		group := arranged[col*collageRows : (col+1)*collageRows]
		l.PlaceColumn(b, dst, BuildColumn(group, l.Tile.CellHeight, l.Margin), col)
	}
	return nil
}

// PlaceColumn rotates a column buffer and draws it at column col's anchor.
// column is either a plain column or an extended-column window; in both the
// cell stack starts at the top-left and the shadow pad trails to the right
// and bottom. Rotation expands the bounds so no corner is clipped.
func (l CollageLayout) PlaceColumn(b raster.Backend, dst draw.Image, column image.Image, col int) {
	cb := column.Bounds()
	rotated := b.Rotate(column, l.Rotation)
	rb := rotated.Bounds()

	// The pivot sits half a pad up and left of the buffer centre.
	px := float64(cb.Dx()-l.Tile.CellWidth) / 2
	py := float64(cb.Dy()-l.ColumnHeight()) / 2
	ox, oy := rotateVector(px, py, l.Rotation)

	a := l.Anchor(col)
	x := float64(a.X) - float64(rb.Dx())/2 + ox
	y := float64(a.Y) - float64(rb.Dy())/2 + oy
	b.Composite(dst, rotated, image.Pt(int(math.Round(x)), int(math.Round(y))))
}

// rotateVector rotates (x, y) counter-clockwise on screen (y axis down) by
// degrees.
func rotateVector(x, y, degrees float64) (float64, float64) {
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	return x*cos + y*sin, -x*sin + y*cos
}
