// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ItemStatus is the outcome of running one input item through a pipeline.
type ItemStatus string

const (
	ItemConverted ItemStatus = "converted"
	ItemSkipped   ItemStatus = "skipped"
	ItemFailed    ItemStatus = "failed"
)

// ItemResult reports what happened to a single input item. Output is the
// path of the file written (or the existing file for skipped items). Err is
// set only when Status is ItemFailed.
type ItemResult struct {
	Item   string
	Output string
	Status ItemStatus
	Err    error
}

// Converted returns a successful result for item written to output.
func Converted(item, output string) ItemResult {
	return ItemResult{Item: item, Output: output, Status: ItemConverted}
}

// Skipped returns a result for an item whose output already exists.
func Skipped(item, output string) ItemResult {
	return ItemResult{Item: item, Output: output, Status: ItemSkipped}
}

// Failed returns a result for an item that could not be processed.
func Failed(item string, err error) ItemResult {
	return ItemResult{Item: item, Status: ItemFailed, Err: err}
}

// BatchResult holds the outcome counts of a pipeline run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Add records one item result.
func (r *BatchResult) Add(res ItemResult) {
	switch res.Status {
	case ItemConverted:
		r.Converted++
	case ItemSkipped:
		r.Skipped++
	case ItemFailed:
		r.Failed++
	}
}

// Total returns the number of items processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any item failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}
