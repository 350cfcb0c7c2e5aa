package crawl

// Candidate is one detail-page URL to try, tagged with the strategy that
// produced it.
type Candidate struct {
	Strategy string
	URL      string
}

// CandidateQueue is an ordered queue of candidates with URL deduplication
// and an optional cap on how many distinct URLs it accepts.
type CandidateQueue struct {
	items   []Candidate
	visited map[string]bool
	limit   int
	idx     int
}

// NewCandidateQueue creates an empty queue. limit <= 0 means unbounded.
func NewCandidateQueue(limit int) *CandidateQueue {
	return &CandidateQueue{
		visited: make(map[string]bool),
		limit:   limit,
	}
}

// Add enqueues a candidate unless its URL was already seen or the queue is
// full. It reports whether the candidate was accepted.
func (q *CandidateQueue) Add(strategy, url string) bool {
	if url == "" {
		return false
	}
	key := NormalizeURL(url)
	if q.visited[key] {
		return false
	}
	if q.limit > 0 && len(q.items) >= q.limit {
		return false
	}
	q.visited[key] = true
	q.items = append(q.items, Candidate{Strategy: strategy, URL: url})
	return true
}

// HasNext returns true if there are untried candidates.
func (q *CandidateQueue) HasNext() bool {
	return q.idx < len(q.items)
}

// Next returns the next candidate and advances the pointer.
func (q *CandidateQueue) Next() Candidate {
	c := q.items[q.idx]
	q.idx++
	return c
}

// Len returns the number of accepted candidates.
func (q *CandidateQueue) Len() int {
	return len(q.items)
}

// All returns every accepted candidate in order.
func (q *CandidateQueue) All() []Candidate {
	return q.items
}
