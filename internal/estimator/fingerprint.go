// Package estimator implements the per-property estimators: condition,
// renovation cost, timeline, after-repair value, rental income, council
// rates, subdivision potential, and insurability. The condition and
// subdivision estimators are content-addressed: a stable fingerprint of
// their exact inputs decides whether a prior result can be reused.
package estimator

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// PhotoFingerprint hashes the photo set that a condition assessment would
// see: the first maxPhotos references, order-insensitively. An identical
// fingerprint guarantees an identical external call, so the prior result is
// reusable as-is.
func PhotoFingerprint(photos []string, maxPhotos int) string {
	if maxPhotos <= 0 {
		maxPhotos = 6
	}
	subset := append([]string(nil), photos...)
	if len(subset) > maxPhotos {
		subset = subset[:maxPhotos]
	}
	sort.Strings(subset)
	return hashJSON(subset)
}

// SubdivisionFingerprint hashes the inputs the subdivision estimate depends
// on. A change to any one of them forces recomputation.
func SubdivisionFingerprint(address, district, region string, landArea float64) string {
	return hashJSON(map[string]any{
		"address":   address,
		"district":  district,
		"region":    region,
		"land_area": landArea,
	})
}

func hashJSON(v any) string {
	// Marshal of maps is key-sorted, so the digest is stable.
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
