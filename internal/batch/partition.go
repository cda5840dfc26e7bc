package batch

import "github.com/JaimeStill/screener/internal/documents"

// Batch is a contiguous slice of the input. Index is stable for a given
// input and batch size.
type Batch struct {
	Index     int
	Documents []documents.Document
}

// Partition splits docs into batches of size, preserving order. The last
// batch may be shorter.
func Partition(docs []documents.Document, size int) []Batch {
	if size < 1 || len(docs) == 0 {
		return nil
	}

	batches := make([]Batch, 0, (len(docs)+size-1)/size)
	for start := 0; start < len(docs); start += size {
		end := min(start+size, len(docs))
		batches = append(batches, Batch{
			Index:     len(batches),
			Documents: docs[start:end],
		})
	}
	return batches
}
