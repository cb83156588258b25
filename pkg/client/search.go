package client

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/tmutasa/herdmarket-server/internal/models"
)

// SearchResult delivers one applied page of results
type SearchResult struct {
	Page  *models.Paginated[models.BreedingEvent]
	Query url.Values
	Err   error
}

// Searcher drives the debounced search-as-you-type list view. Keystrokes
// reset a pending timer; only the last keystroke within the debounce window
// fires a request. Dropdown filter changes fire immediately. Every request
// carries a generation number and responses from superseded generations are
// dropped, so a stale slow response can never overwrite a newer one.
type Searcher struct {
	client   *Client
	debounce time.Duration
	results  chan<- SearchResult

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64

	search  string
	status  string
	method  string
	page    int
	perPage int
}

// NewSearcher creates a searcher delivering applied results on the given
// channel. A zero debounce defaults to 400ms.
func NewSearcher(c *Client, debounce time.Duration, results chan<- SearchResult) *Searcher {
	if debounce <= 0 {
		debounce = 400 * time.Millisecond
	}
	return &Searcher{client: c, debounce: debounce, results: results}
}

// SetSearch records a keystroke and (re)starts the debounce timer
func (s *Searcher) SetSearch(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.search = text
	s.page = 0

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.fire)
}

// SetStatus changes the status filter and fires immediately
func (s *Searcher) SetStatus(status string) {
	s.mu.Lock()
	s.status = status
	s.page = 0
	s.mu.Unlock()
	s.fire()
}

// SetMethod changes the method filter and fires immediately
func (s *Searcher) SetMethod(method string) {
	s.mu.Lock()
	s.method = method
	s.page = 0
	s.mu.Unlock()
	s.fire()
}

// SetPage jumps to a page and fires immediately
func (s *Searcher) SetPage(page int) {
	s.mu.Lock()
	s.page = page
	s.mu.Unlock()
	s.fire()
}

// Query mirrors the current filters as the query string the browser address
// bar shows, so a reloaded page restores the same view
func (s *Searcher) Query() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryLocked()
}

func (s *Searcher) queryLocked() url.Values {
	q := url.Values{}
	if s.search != "" {
		q.Set("search", s.search)
	}
	if s.status != "" {
		q.Set("status", s.status)
	}
	if s.method != "" {
		q.Set("method", s.method)
	}
	if s.page > 1 {
		q.Set("page", strconv.Itoa(s.page))
	}
	if s.perPage > 0 {
		q.Set("per_page", strconv.Itoa(s.perPage))
	}
	return q
}

// fire issues the request for the current filters under a fresh generation
func (s *Searcher) fire() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
	gen := s.generation
	query := s.queryLocked()
	s.mu.Unlock()

	go func() {
		page, err := s.client.ListBreedingEvents(context.Background(), query)

		s.mu.Lock()
		stale := gen != s.generation
		s.mu.Unlock()
		if stale {
			// A newer request owns the view now
			return
		}

		s.results <- SearchResult{Page: page, Query: query, Err: err}
	}()
}

// Flush fires any pending debounced request immediately
func (s *Searcher) Flush() {
	s.mu.Lock()
	pending := s.timer != nil
	s.mu.Unlock()
	if pending {
		s.fire()
	}
}
