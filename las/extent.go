package las

// Extent is an axis-aligned 3-D bounding box in real-world coordinates.
type Extent struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// Union returns the smallest extent covering both e and other.
func (e Extent) Union(other Extent) Extent {
	if other.MinX < e.MinX {
		e.MinX = other.MinX
	}
	if other.MaxX > e.MaxX {
		e.MaxX = other.MaxX
	}
	if other.MinY < e.MinY {
		e.MinY = other.MinY
	}
	if other.MaxY > e.MaxY {
		e.MaxY = other.MaxY
	}
	if other.MinZ < e.MinZ {
		e.MinZ = other.MinZ
	}
	if other.MaxZ > e.MaxZ {
		e.MaxZ = other.MaxZ
	}

	return e
}

// Contains reports whether the point (x, y, z) lies within the extent,
// boundaries included.
func (e Extent) Contains(x, y, z float64) bool {
	return x >= e.MinX && x <= e.MaxX &&
		y >= e.MinY && y <= e.MaxY &&
		z >= e.MinZ && z <= e.MaxZ
}
