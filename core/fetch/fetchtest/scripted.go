// Package fetchtest provides a scripted core.Fetcher for tests.
package fetchtest

import (
	"context"
	"errors"
	"sync"

	"github.com/gaurav-prasanna/senseiharvest/core"
)

// Scripted answers from a fixed table of pages and records every request
// in order. Unknown URLs are NotFound.
type Scripted struct {
	mu        sync.Mutex
	pages     map[string]core.FetchResult
	sequences map[string][]core.FetchResult
	calls     []string
}

func New() *Scripted {
	return &Scripted{
		pages:     make(map[string]core.FetchResult),
		sequences: make(map[string][]core.FetchResult),
	}
}

// Page registers a successful HTML response.
func (s *Scripted) Page(url, html string) *Scripted {
	return s.Bytes(url, []byte(html))
}

// Bytes registers a successful response with a raw body.
func (s *Scripted) Bytes(url string, body []byte) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = core.FetchResult{URL: url, Status: core.FetchSuccess, StatusCode: 200, Body: body}
	return s
}

// Transient makes url fail with a transient error.
func (s *Scripted) Transient(url string) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = transient(url)
	return s
}

// Sequence makes successive requests to url return results in order; the
// last one repeats.
func (s *Scripted) Sequence(url string, results ...core.FetchResult) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequences[url] = results
	return s
}

func (s *Scripted) Fetch(ctx context.Context, url string) core.FetchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, url)

	if err := ctx.Err(); err != nil {
		return core.FetchResult{URL: url, Status: core.FetchTransient, Err: err}
	}
	if seq, ok := s.sequences[url]; ok && len(seq) > 0 {
		res := seq[0]
		if len(seq) > 1 {
			s.sequences[url] = seq[1:]
		}
		res.URL = url
		return res
	}
	if res, ok := s.pages[url]; ok {
		return res
	}
	return core.FetchResult{URL: url, Status: core.FetchNotFound, StatusCode: 404}
}

// Calls returns the requested URLs in order.
func (s *Scripted) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Count returns how many times url was requested.
func (s *Scripted) Count(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == url {
			n++
		}
	}
	return n
}

// Success, NotFound and Failure build results for Sequence.
func Success(html string) core.FetchResult {
	return core.FetchResult{Status: core.FetchSuccess, StatusCode: 200, Body: []byte(html)}
}

func NotFound() core.FetchResult {
	return core.FetchResult{Status: core.FetchNotFound, StatusCode: 404}
}

func Failure() core.FetchResult {
	return transient("")
}

func transient(url string) core.FetchResult {
	return core.FetchResult{URL: url, Status: core.FetchTransient, Err: errors.New("connection reset by peer")}
}
