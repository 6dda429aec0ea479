// Package cover renders library cover artwork.
//
// A [Service] is built once at startup around an artwork source and a raster
// backend. It produces:
//
//   - static covers (PNG, 1920x1080) in three styles: a rotated 3x3 collage
//     of poster tiles, a diagonal split of one artwork over a tinted plate,
//     and a stack of three rotated cards;
//   - looping animations (GIF or animated WebP, 560x315) in which the three
//     collage columns scroll endlessly.
//
// The pipeline is built from small pieces that can be used on their own:
// [ComposeTile] renders one shadowed, rounded poster tile; [BlurredPlate],
// [SolidPlate] and [GradientPlate] build backdrops; [TitleRenderer] draws the
// title block; [CollageLayout] places columns; [ExtendedColumn] provides the
// seamless scroll window used by the animation.
//
// Every random step draws from a per-request generator. Setting
// [StyleParams].Seed makes the output byte-for-byte reproducible.
package cover
