package utils

// PageResponse is one page of a listing. NextPageToken is omitted on the
// last page.
type PageResponse[T any] struct {
	Items         []T    `json:"items"`
	NextPageToken *int64 `json:"nextPageToken,omitempty"`
	ItemCount     int64  `json:"itemCount"`
}

// Paginate cuts one page out of an in-memory list.
func Paginate[T any](items []T, page PageRequest) *PageResponse[T] {
	count := len(items)
	start := min(page.Offset, count)
	end := min(start+page.Size, count)

	response := &PageResponse[T]{
		Items:     items[start:end],
		ItemCount: int64(count),
	}
	if response.Items == nil {
		response.Items = []T{}
	}
	if end < count {
		next := int64(page.Token + 1)
		response.NextPageToken = &next
	}
	return response
}
