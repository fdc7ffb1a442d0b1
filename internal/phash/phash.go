package phash

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math/bits"
	"strconv"

	"golang.org/x/image/draw"
)

// dHash sampling grid: 9x8 pixels give 64 horizontal gradient bits.
const (
	hashWidth  = 9
	hashHeight = 8
)

// Hash computes the 64-bit difference hash of an encoded cover image. JPEG
// and PNG pages are supported, which covers every scan seen in practice.
func Hash(data []byte) (uint64, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("phash: decode cover: %w", err)
	}

	gray := image.NewGray(image.Rect(0, 0, hashWidth, hashHeight))
	draw.ApproxBiLinear.Scale(gray, gray.Bounds(), src, src.Bounds(), draw.Src, nil)

	var hash uint64
	for y := 0; y < hashHeight; y++ {
		for x := 0; x < hashWidth-1; x++ {
			hash <<= 1
			if gray.GrayAt(x, y).Y < gray.GrayAt(x+1, y).Y {
				hash |= 1
			}
		}
	}
	return hash, nil
}

// Distance returns the Hamming distance between two hashes. Visually similar
// covers land within a handful of bits of each other.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Format renders a hash in the fixed-width hex form used in logs.
func Format(hash uint64) string {
	return fmt.Sprintf("%016s", strconv.FormatUint(hash, 16))
}
