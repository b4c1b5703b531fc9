package worker

// Range is the half-open index interval [Start, End).
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int {
	return r.End - r.Start
}

// ChunkRange splits [0, n) into consecutive ranges of at most chunkSize
// indices. chunkSize <= 0 yields a single range.
func ChunkRange(n, chunkSize int) []Range {
	if n <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = n
	}
	var chunks []Range
	for i := 0; i < n; i += chunkSize {
		end := i + chunkSize
		if end > n {
			end = n
		}
		chunks = append(chunks, Range{Start: i, End: end})
	}
	return chunks
}
