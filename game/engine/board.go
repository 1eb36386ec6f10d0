package engine

import "errors"

var ErrUnknownCharacter = errors.New("unknown character")

// vines climb from source to destination
var vines = map[int]int{
	4:  18,
	9:  25,
	20: 38,
	33: 52,
	44: 61,
}

// clouds drop from source to destination
var clouds = map[int]int{
	17: 6,
	28: 12,
	40: 22,
	54: 35,
	60: 41,
}

var (
	doubleTiles  = map[int]bool{7: true, 16: true, 31: true, 48: true}
	swapTiles    = map[int]bool{13: true, 29: true, 46: true}
	freezeTiles  = map[int]bool{23: true, 37: true, 55: true}
	mysteryTiles = map[int]bool{10: true, 19: true, 36: true, 50: true, 58: true}
)

var characters = []Character{
	{ID: "bunny", Emoji: "🐰", Name: "Bunny", Color: "#FFB3D9"},
	{ID: "fox", Emoji: "🦊", Name: "Fox", Color: "#FFB347"},
	{ID: "cat", Emoji: "🐱", Name: "Cat", Color: "#B3D9FF"},
	{ID: "fairy", Emoji: "🧚", Name: "Fairy", Color: "#C8B3FF"},
}

// TileTypeAt returns the type of the given tile number
func TileTypeAt(tile int) TileType {
	if _, ok := vines[tile]; ok {
		return Vine
	}
	if _, ok := clouds[tile]; ok {
		return Cloud
	}
	switch {
	case doubleTiles[tile]:
		return Double
	case swapTiles[tile]:
		return Swap
	case freezeTiles[tile]:
		return Freeze
	case mysteryTiles[tile]:
		return Mystery
	}
	return Normal
}

// VineDest returns the top of the vine starting at tile
func VineDest(tile int) (int, bool) {
	dest, ok := vines[tile]
	return dest, ok
}

// CloudDest returns where a cloud at tile drops the player
func CloudDest(tile int) (int, bool) {
	dest, ok := clouds[tile]
	return dest, ok
}

// NearestVineAbove finds the closest vine source strictly above pos
func NearestVineAbove(pos int) (source, dest int, found bool) {
	for src, dst := range vines {
		if src > pos && (!found || src < source) {
			source, dest, found = src, dst, true
		}
	}
	return source, dest, found
}

// TileCoord maps a tile to its serpentine position on the 8x8 grid. Row 0 is
// the top row, so tile 1 sits in the bottom-left corner and tile 64 top-left.
func TileCoord(tile int) (row, col int) {
	idx := tile - 1
	r := idx / BoardCols
	col = idx % BoardCols
	if r%2 != 0 {
		col = BoardCols - 1 - col
	}
	row = (TotalTiles-1)/BoardCols - r
	return row, col
}

// Board returns the full tile table, ordered by tile number
func Board() []Tile {
	tiles := make([]Tile, 0, TotalTiles)
	for n := 1; n <= TotalTiles; n++ {
		t := Tile{Number: n, Type: TileTypeAt(n)}
		switch t.Type {
		case Vine:
			t.Dest = vines[n]
		case Cloud:
			t.Dest = clouds[n]
		}
		t.Row, t.Col = TileCoord(n)
		tiles = append(tiles, t)
	}
	return tiles
}

// TilesOfType returns the sorted tile numbers of a given type
func TilesOfType(tileType TileType) []int {
	var out []int
	for n := 1; n <= TotalTiles; n++ {
		if TileTypeAt(n) == tileType {
			out = append(out, n)
		}
	}
	return out
}

// Characters returns a copy of the selectable characters
func Characters() []Character {
	out := make([]Character, len(characters))
	copy(out, characters)
	return out
}

// LookupCharacter finds a character by id
func LookupCharacter(id string) (*Character, error) {
	for i := range characters {
		if characters[i].ID == id {
			c := characters[i]
			return &c, nil
		}
	}
	return nil, ErrUnknownCharacter
}
