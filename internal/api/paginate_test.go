package api

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPageLinks(t *testing.T) {
	query := url.Values{}
	query.Set("status", "pending")
	query.Set("page", "2")

	links := BuildPageLinks("/api/admin/payouts", query, 2, 3)

	// prev + 3 pages + next
	assert.Len(t, links, 5)

	assert.Equal(t, "&laquo; Previous", links[0].Label)
	assert.NotNil(t, links[0].URL)
	assert.Contains(t, *links[0].URL, "page=1")

	assert.Equal(t, "2", links[2].Label)
	assert.True(t, links[2].Active)
	assert.False(t, links[1].Active)

	assert.Equal(t, "Next &raquo;", links[4].Label)
	assert.Contains(t, *links[4].URL, "page=3")

	// Active filters survive in every link
	for _, link := range links {
		if link.URL != nil {
			assert.Contains(t, *link.URL, "status=pending")
		}
	}
}

func TestBuildPageLinksEdges(t *testing.T) {
	// First page has no previous URL
	links := BuildPageLinks("/api/admin/tags", url.Values{}, 1, 2)
	assert.Nil(t, links[0].URL)
	assert.NotNil(t, links[len(links)-1].URL)

	// Last page has no next URL
	links = BuildPageLinks("/api/admin/tags", url.Values{}, 2, 2)
	assert.NotNil(t, links[0].URL)
	assert.Nil(t, links[len(links)-1].URL)

	// Single page has neither
	links = BuildPageLinks("/api/admin/tags", url.Values{}, 1, 1)
	assert.Len(t, links, 3)
	assert.Nil(t, links[0].URL)
	assert.Nil(t, links[2].URL)
}
