package substrate

// index flattens cell coordinates into a grid offset.
func (u *Universe) index(ix, iy, iz int) int {
	return (iz*u.ny+iy)*u.nx + ix
}

// cellAt returns the clamped cell coordinates containing pos.
func (u *Universe) cellAt(pos Vec3) (int, int, int) {
	ix := clampInt(int((pos.X+u.width/2)/u.resolution), 0, u.nx-1)
	iy := clampInt(int((pos.Y+u.height/2)/u.resolution), 0, u.ny-1)
	iz := clampInt(int((pos.Z+u.depth/2)/u.resolution), 0, u.nz-1)
	return ix, iy, iz
}

// cellCenter returns the world position of a cell's center.
func (u *Universe) cellCenter(ix, iy, iz int) Vec3 {
	return Vec3{
		X: (float32(ix)+0.5)*u.resolution - u.width/2,
		Y: (float32(iy)+0.5)*u.resolution - u.height/2,
		Z: (float32(iz)+0.5)*u.resolution - u.depth/2,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
