package cover

import (
	"image"
	"image/draw"

	"media-covers/internal/raster"
)

// TileSpec describes the poster tile geometry.
type TileSpec struct {
	CellWidth     int
	CellHeight    int
	CornerRadius  int
	ShadowOffset  int
	ShadowBlur    int
	ShadowOpacity uint8
}

// DefaultTileSpec is the collage tile: 410x610 cards, 46px corners and a
// 20px drop shadow at 85% opacity.
func DefaultTileSpec() TileSpec {
	return TileSpec{
		CellWidth:     410,
		CellHeight:    610,
		CornerRadius:  46,
		ShadowOffset:  20,
		ShadowBlur:    20,
		ShadowOpacity: 216,
	}
}

// Pad is the extra width and height a tile carries for its shadow.
func (s TileSpec) Pad() int {
	return s.ShadowOffset + 2*s.ShadowBlur
}

// Size is the full tile size including the shadow pad.
func (s TileSpec) Size() image.Point {
	return image.Pt(s.CellWidth+s.Pad(), s.CellHeight+s.Pad())
}

// ComposeTile renders src as one tile: the artwork center-cropped to the
// cell, clipped to a rounded rectangle, over a blurred drop shadow. The card
// sits at (ShadowBlur, ShadowBlur); the rest of the tile is transparent.
func ComposeTile(b raster.Backend, src image.Image, spec TileSpec) *image.RGBA {
	card := b.Fill(src, spec.CellWidth, spec.CellHeight)
	mask := b.RoundedMask(spec.CellWidth, spec.CellHeight, spec.CornerRadius)
	raster.ApplyMask(card, mask)

	size := spec.Size()
	shadow := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	silhouette := raster.Silhouette(mask, 0, 0, 0, spec.ShadowOpacity)
	at := spec.ShadowBlur + spec.ShadowOffset
	b.Composite(shadow, silhouette, image.Pt(at, at))
	blurred := b.Blur(shadow, float64(spec.ShadowBlur))

	tile := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(tile, tile.Bounds(), blurred, blurred.Bounds().Min, draw.Src)
	b.Composite(tile, card, image.Pt(spec.ShadowBlur, spec.ShadowBlur))
	return tile
}

// composeTiles renders one tile per image.
func composeTiles(b raster.Backend, images []image.Image, spec TileSpec) []*image.RGBA {
	tiles := make([]*image.RGBA, len(images))
	for i, img := range images {
		tiles[i] = ComposeTile(b, img, spec)
	}
	return tiles
}
