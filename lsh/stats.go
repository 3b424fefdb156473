package lsh

// Stats summarizes the bucket distribution of a built index.
type Stats struct {
	Points    int `json:"points"`
	Dimension int `json:"dimension"`
	Tables    int `json:"tables"`
	// Buckets is the number of non-empty buckets over all tables.
	Buckets int `json:"buckets"`
	// MaxBucket is the size of the largest bucket.
	MaxBucket int `json:"max_bucket"`
	// MeanBucket is the average size of a non-empty bucket.
	MeanBucket float64 `json:"mean_bucket"`
	// EstimatedBytes is the memory estimate reserved for the tables.
	EstimatedBytes int64 `json:"estimated_bytes"`
}

// Stats returns statistics about the index. It is the zero value before Build.
func (ix *Index) Stats() Stats {
	if !ix.built.Load() {
		return Stats{}
	}
	return ix.stats
}

func computeStats(tables []table, points, dim int, estimate int64) Stats {
	s := Stats{
		Points:         points,
		Dimension:      dim,
		Tables:         len(tables),
		EstimatedBytes: estimate,
	}

	for _, t := range tables {
		s.Buckets += len(t)
		for _, b := range t {
			s.MaxBucket = max(s.MaxBucket, len(b))
		}
	}
	if s.Buckets > 0 {
		// Every table holds every point exactly once.
		s.MeanBucket = float64(points*len(tables)) / float64(s.Buckets)
	}
	return s
}
