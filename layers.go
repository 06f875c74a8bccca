package nearfield

// LayerMask selects which collider layers a query considers. Bit i
// corresponds to layer index i, so a mask covers layers 0 through 31.
type LayerMask uint32

// AllLayers matches every layer.
const AllLayers = LayerMask(0xffffffff)

// MaskOf builds a mask from layer indices. Indices outside 0..31 are
// ignored.
func MaskOf(layers ...int) LayerMask {
	var m LayerMask
	for _, l := range layers {
		if l < 0 || l > 31 {
			continue
		}
		m |= 1 << uint(l)
	}
	return m
}

// Contains reports whether layer index l is in the mask.
func (m LayerMask) Contains(l int) bool {
	if l < 0 || l > 31 {
		return false
	}
	return m&(1<<uint(l)) != 0
}
