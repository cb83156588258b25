package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tmutasa/herdmarket-server/internal/models"
)

func emptyPage() models.Paginated[models.BreedingEvent] {
	return models.Paginated[models.BreedingEvent]{
		Data:        []models.BreedingEvent{},
		CurrentPage: 1,
		LastPage:    1,
	}
}

func TestDebouncedSearchFiresOnce(t *testing.T) {
	var mu sync.Mutex
	var queries []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.Query().Get("search"))
		mu.Unlock()
		json.NewEncoder(w).Encode(emptyPage())
	}))
	defer server.Close()

	results := make(chan SearchResult, 4)
	s := NewSearcher(New(server.URL), 60*time.Millisecond, results)

	// Three keystrokes inside the debounce window
	s.SetSearch("go")
	time.Sleep(10 * time.Millisecond)
	s.SetSearch("goa")
	time.Sleep(10 * time.Millisecond)
	s.SetSearch("goat")

	select {
	case res := <-results:
		assert.NoError(t, res.Err)
		assert.Equal(t, "goat", res.Query.Get("search"))
	case <-time.After(2 * time.Second):
		t.Fatal("no search result arrived")
	}

	// Give any extra request time to show up, then check only one fired
	time.Sleep(150 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"goat"}, queries)
}

func TestFilterChangeFiresImmediately(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(emptyPage())
	}))
	defer server.Close()

	results := make(chan SearchResult, 4)
	s := NewSearcher(New(server.URL), time.Hour, results)

	// Despite the huge debounce, a dropdown change does not wait
	s.SetStatus("pending")

	select {
	case res := <-results:
		assert.NoError(t, res.Err)
		assert.Equal(t, "pending", res.Query.Get("status"))
	case <-time.After(2 * time.Second):
		t.Fatal("filter change did not fire a request")
	}
}

func TestStaleResponseIsDropped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search") == "slow" {
			time.Sleep(200 * time.Millisecond)
		}
		json.NewEncoder(w).Encode(emptyPage())
	}))
	defer server.Close()

	results := make(chan SearchResult, 4)
	s := NewSearcher(New(server.URL), 10*time.Millisecond, results)

	// The slow request is superseded before its response arrives
	s.SetSearch("slow")
	s.Flush()
	s.SetSearch("fast")
	s.Flush()

	select {
	case res := <-results:
		assert.NoError(t, res.Err)
		assert.Equal(t, "fast", res.Query.Get("search"))
	case <-time.After(2 * time.Second):
		t.Fatal("no search result arrived")
	}

	// The slow response finishes later but never reaches the view
	select {
	case res := <-results:
		t.Fatalf("stale response was applied: %v", res.Query)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestQueryMirrorsFilters(t *testing.T) {
	s := NewSearcher(New("http://unused"), time.Hour, make(chan SearchResult, 1))

	s.mu.Lock()
	s.search = "boer"
	s.status = "pending"
	s.page = 3
	s.mu.Unlock()

	q := s.Query()
	assert.Equal(t, "boer", q.Get("search"))
	assert.Equal(t, "pending", q.Get("status"))
	assert.Equal(t, "3", q.Get("page"))
	assert.Empty(t, q.Get("method"))
}
