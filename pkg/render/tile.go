package render

// Tile size in pixels. Each tile is rasterized by exactly one goroutine, so
// no two goroutines ever write the same pixel.
const (
	TileWidth  = 64
	TileHeight = 64
)

// tile is a half-open pixel rectangle [x0,x1)x[y0,y1).
type tile struct {
	x0, y0, x1, y1 int
}

// tiles partitions a width x height buffer into row-major tiles. Edge tiles
// are smaller when the size is not a multiple of the tile size.
func tiles(width, height int) []tile {
	cols := (width + TileWidth - 1) / TileWidth
	rows := (height + TileHeight - 1) / TileHeight
	out := make([]tile, 0, cols*rows)
	for ty := range rows {
		for tx := range cols {
			out = append(out, tile{
				x0: tx * TileWidth,
				y0: ty * TileHeight,
				x1: min((tx+1)*TileWidth, width),
				y1: min((ty+1)*TileHeight, height),
			})
		}
	}
	return out
}

// clip intersects the pixel range of a triangle with the tile.
func (t tile) clip(x0, y0, x1, y1 int) (int, int, int, int, bool) {
	x0, y0 = max(x0, t.x0), max(y0, t.y0)
	x1, y1 = min(x1, t.x1), min(y1, t.y1)
	return x0, y0, x1, y1, x0 < x1 && y0 < y1
}
