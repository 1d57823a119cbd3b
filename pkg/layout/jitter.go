package layout

import "hash/fnv"

// Jitter returns a small deterministic offset in [-scale/2, scale/2) derived
// from a stable hash of the node id. Repeated layout passes stay
// pixel-identical while the result avoids a perfectly mechanical grid.
//
// The y axis passes a distinct key (id + "y") so the two axes decorrelate.
func Jitter(nodeID string, scale float64) float64 {
	return (float64(stringHash(nodeID)%100)/100 - 0.5) * scale
}

// stringHash is FNV-1a over the id. Any stable string hash works here; the
// requirement is reproducibility, not distribution quality.
func stringHash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
