package sink

import "hash/fnv"

// palette holds the fill colors used for tiles without an image.
var palette = []string{
	"#4E79A7", "#F28E2B", "#E15759", "#76B7B2", "#59A14F",
	"#EDC948", "#B07AA1", "#FF9DA7", "#9C755F", "#BAB0AC",
}

// tileColor picks a stable palette color for a tile ID.
func tileColor(id string) string {
	h := fnv.New32a()
	h.Write([]byte(id))
	return palette[h.Sum32()%uint32(len(palette))]
}

// hexRGB converts "#RRGGBB" into components in [0, 1].
func hexRGB(hex string) (r, g, b float64) {
	var v [3]uint8
	for i := range v {
		v[i] = hexByte(hex[1+2*i])<<4 | hexByte(hex[2+2*i])
	}
	return float64(v[0]) / 255, float64(v[1]) / 255, float64(v[2]) / 255
}

func hexByte(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
