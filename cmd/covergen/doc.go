// Command covergen renders one cover from a directory of libraries without
// running the server.
//
// Usage:
//
//	covergen -dir /media -library movies [-style collage|split|cards]
//	         [-animated -frames 30 -duration 50 -format gif|webp]
//	         [-title TEXT] [-subtitle TEXT] [-seed N] [-vips] [-v] -out cover.png
//
// The -seed flag makes the output reproducible. WebP animations need -vips
// and a libvips build with WebP support.
package main
