package imaging

import (
	"image"
	"sync"

	"github.com/corona10/goimagehash"
)

// dedupThreshold is the maximum Hamming distance between two dHash values
// below which images are considered perceptually identical.
const dedupThreshold = 10

// DedupFilter skips perceptually identical images within one library scan.
// Safe for concurrent use.
type DedupFilter struct {
	mu     sync.Mutex
	hashes []*goimagehash.ImageHash
}

func NewDedupFilter() *DedupFilter {
	return &DedupFilter{}
}

// IsDuplicate reports whether img is perceptually identical to a previously
// seen image. Hashing failures accept the image: dedup here is a cost
// optimization, never a correctness gate. Accepted images are remembered.
func (d *DedupFilter) IsDuplicate(img image.Image) bool {
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, h := range d.hashes {
		dist, err := hash.Distance(h)
		if err == nil && dist < dedupThreshold {
			return true
		}
	}
	d.hashes = append(d.hashes, hash)
	return false
}
