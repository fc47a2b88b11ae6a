package store

import (
	"fmt"
	"math"
)

// cosineSimilarity ranks stored chunks against the query vector. The store
// owns the similarity metric; callers only see ranked texts.
func cosineSimilarity(vec1, vec2 []float32) (float64, error) {
	if len(vec1) == 0 || len(vec2) == 0 {
		return 0, fmt.Errorf("vectors cannot be empty")
	}
	if len(vec1) != len(vec2) {
		return 0, fmt.Errorf("vectors must have the same dimension: %d != %d", len(vec1), len(vec2))
	}

	var dot, sumSq1, sumSq2 float64
	for i := range vec1 {
		dot += float64(vec1[i]) * float64(vec2[i])
		sumSq1 += float64(vec1[i]) * float64(vec1[i])
		sumSq2 += float64(vec2[i]) * float64(vec2[i])
	}

	mag1 := math.Sqrt(sumSq1)
	mag2 := math.Sqrt(sumSq2)
	if mag1 == 0 || mag2 == 0 {
		return 0, nil
	}
	return dot / (mag1 * mag2), nil
}
