package kernel

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	"github.com/go-gl/mathgl/mgl64"
)

// ResizeTransform returns the axis-aligned scale that resizes bb to
// newSize on the first dimension axes. An axis with a nonzero size is
// scaled to it. An axis with size zero and autosize set takes the scale of
// the axis with the largest requested size; every other axis keeps scale
// 1. Requesting a size along an axis where bb is flat is not supported: a
// warning is logged and the identity is returned.
//
// dimension must be in [0, 3]; anything else panics.
func (k *Kernel) ResizeTransform(bb sdf.Box3, dimension int, newSize [3]float64, autosize [3]bool) mgl64.Mat4 {
	if dimension < 0 || dimension > 3 {
		panic(fmt.Sprintf("kernel.ResizeTransform: dimension %d out of range", dimension))
	}
	size := bb.Size()
	extent := [3]float64{size.X, size.Y, size.Z}
	scale := [3]float64{1, 1, 1}

	largest := 0
	for i := 0; i < dimension; i++ {
		if newSize[i] == 0 {
			continue
		}
		if extent[i] == 0 {
			k.logger.Warn("resize in direction normal to flat object is not implemented", "axis", i, "size", newSize[i])
			return mgl64.Ident4()
		}
		scale[i] = newSize[i] / extent[i]
		if newSize[i] > newSize[largest] {
			largest = i
		}
	}

	autoscale := 1.0
	if newSize[largest] != 0 {
		autoscale = newSize[largest] / extent[largest]
	}
	for i := 0; i < dimension; i++ {
		if autosize[i] && newSize[i] == 0 {
			scale[i] = autoscale
		}
	}
	return mgl64.Scale3D(scale[0], scale[1], scale[2])
}
