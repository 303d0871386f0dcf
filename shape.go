package blockfall

import (
	"fmt"
	"math/rand"
)

// Offset is a (row, col) pair. Piece cells are offsets relative to the piece
// anchor, and the anchor itself is an offset from the board origin.
type Offset struct {
	Row, Col int
}

func (o Offset) Add(other Offset) Offset {
	return Offset{Row: o.Row + other.Row, Col: o.Col + other.Col}
}

// Rotation is one layout of a piece type.
type Rotation [4]Offset

type PieceType struct {
	Name      string
	Rotations []Rotation
}

type Shape int

const (
	ShapeLine Shape = iota
	ShapeSquare
	ShapeSpike
	ShapeAngle
)

var catalog = [...]PieceType{
	ShapeLine: {
		Name: "line",
		Rotations: []Rotation{
			{{0, 0}, {0, 1}, {0, 2}, {0, 3}},
			{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
		},
	},
	ShapeSquare: {
		Name: "square",
		Rotations: []Rotation{
			{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		},
	},
	ShapeSpike: {
		Name: "spike",
		Rotations: []Rotation{
			{{0, 1}, {1, 0}, {1, 1}, {1, 2}},
			{{0, 1}, {0, 0}, {1, 1}, {0, 2}},
			{{0, 0}, {1, 0}, {2, 0}, {1, 1}},
			{{0, 1}, {1, 1}, {2, 1}, {1, 0}},
		},
	},
	ShapeAngle: {
		Name: "angle",
		Rotations: []Rotation{
			{{0, 0}, {1, 0}, {1, 1}, {1, 2}},
			{{0, 0}, {0, 1}, {1, 1}, {2, 1}},
			{{0, 0}, {1, 0}, {2, 0}, {2, 1}},
			{{0, 0}, {0, 1}, {0, 2}, {1, 2}},
		},
	},
}

// maxExtent is the widest footprint in the catalog, in cells.
const maxExtent = 4

// PieceTypes returns the catalog in stable order. The returned slice is a copy;
// rotation slices are shared and must not be modified.
func PieceTypes() []PieceType {
	types := make([]PieceType, len(catalog))
	copy(types, catalog[:])
	return types
}

// Shapes returns every catalog shape, in the same order as PieceTypes.
func Shapes() []Shape {
	shapes := make([]Shape, len(catalog))
	for i := range shapes {
		shapes[i] = Shape(i)
	}
	return shapes
}

func (s Shape) Valid() bool {
	return s >= 0 && int(s) < len(catalog)
}

// Type returns the catalog entry of s. It panics for a shape outside the
// catalog.
func (s Shape) Type() PieceType {
	if !s.Valid() {
		panic(fmt.Errorf("shape %d is not in the catalog", int(s)))
	}
	return catalog[s]
}

func (s Shape) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Shape(%d)", int(s))
	}
	return catalog[s].Name
}

// RotationCount is the number of distinct layouts of s.
func (s Shape) RotationCount() int {
	return len(s.Type().Rotations)
}

// Cells returns the offsets of s in the given rotation.
func (s Shape) Cells(rotation int) Rotation {
	rotations := s.Type().Rotations
	if rotation < 0 || rotation >= len(rotations) {
		panic(fmt.Errorf("rotation %d out of range for %s", rotation, s))
	}
	return rotations[rotation]
}

func RandomShape(r *rand.Rand) Shape {
	return Shape(r.Intn(len(catalog)))
}

// RandomPieceType uniformly selects one catalog entry.
func RandomPieceType(r *rand.Rand) PieceType {
	return RandomShape(r).Type()
}
