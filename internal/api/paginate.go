package api

import (
	"net/url"
	"strconv"

	"github.com/tmutasa/herdmarket-server/internal/models"
)

// BuildPageLinks produces the previous/numbered/next link list the admin
// screens render verbatim. All non-page query parameters are preserved so a
// link never drops an active filter.
func BuildPageLinks(path string, query url.Values, current, last int) []models.PageLink {
	pageURL := func(page int) *string {
		q := url.Values{}
		for k, vs := range query {
			if k == "page" {
				continue
			}
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		q.Set("page", strconv.Itoa(page))
		u := path + "?" + q.Encode()
		return &u
	}

	links := make([]models.PageLink, 0, last+2)

	prev := models.PageLink{Label: "&laquo; Previous"}
	if current > 1 {
		prev.URL = pageURL(current - 1)
	}
	links = append(links, prev)

	for page := 1; page <= last; page++ {
		links = append(links, models.PageLink{
			URL:    pageURL(page),
			Label:  strconv.Itoa(page),
			Active: page == current,
		})
	}

	next := models.PageLink{Label: "Next &raquo;"}
	if current < last {
		next.URL = pageURL(current + 1)
	}
	links = append(links, next)

	return links
}
