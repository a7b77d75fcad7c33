package sikka

// Envelope represents the unified paginated response wrapper returned by every
// list endpoint of the upstream API.
// The client returns envelopes (or their bare item sequences) unmodified; it
// never follows the page markers itself. Callers traverse pages by re-invoking
// a list operation with adjusted offset/limit values.
type Envelope[T any] struct {
	CurrentPage   string  `json:"current_page,omitempty"`
	FirstPage     string  `json:"first_page,omitempty"`
	LastPage      string  `json:"last_page,omitempty"`
	NextPage      string  `json:"next_page,omitempty"`
	PreviousPage  string  `json:"previous_page,omitempty"`
	TotalCount    int64   `json:"total_count,omitempty"`
	Limit         int64   `json:"limit,omitempty"`
	Offset        int64   `json:"offset,omitempty"`
	ExecutionTime float64 `json:"execution_time,omitempty"`
	Items         []T     `json:"items"`
}
