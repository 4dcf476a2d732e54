// Package pagination builds the page link list shown under a topic title.
package pagination

import (
	"fmt"
	"net/url"
	"strconv"

	"forumhelper/pkg/forum"
)

// Ellipsis is the label of the marker that replaces the truncated middle.
const Ellipsis = "..."

// keep is how many pages stay visible at each end after truncation.
const keep = 2

// Link is a renderable page link. An ellipsis marker has Page 0 and no Href.
type Link struct {
	Page  int    `json:"page,omitempty"`
	Label string `json:"label"`
	Href  string `json:"href,omitempty"`
}

// IsEllipsis reports whether l is the truncation marker.
func (l Link) IsEllipsis() bool { return l.Page == 0 && l.Label == Ellipsis }

// LinkBuilder turns a resource reference into a URL.
type LinkBuilder interface {
	Build(resource, slug string, page int) string
}

// RouteBuilder produces /<prefix>/<resource>/view/<slug>/page:<n> paths.
type RouteBuilder struct {
	Prefix string
}

func (b RouteBuilder) Build(resource, slug string, page int) string {
	return fmt.Sprintf("%s/%s/view/%s/page:%d", b.Prefix, resource, url.PathEscape(slug), page)
}

// Settings are the pagination knobs from the forum configuration.
type Settings struct {
	PostsPerPage  int
	TruncateAfter int
}

// PageCount returns the topic's stored page count or derives it from the
// post count. A topic always has at least one page.
func PageCount(t forum.TopicSummary, postsPerPage int) int {
	if t.PageCount > 0 {
		return t.PageCount
	}
	if postsPerPage <= 0 || t.PostCount <= postsPerPage {
		return 1
	}
	n := t.PostCount / postsPerPage
	if t.PostCount%postsPerPage != 0 {
		n++
	}
	return n
}

// BuildPageLinks returns one link per page. When the page count exceeds
// TruncateAfter, the middle pages collapse into a single ellipsis marker so
// only the first two and last two pages remain. Only the pages that are
// returned get built.
func BuildPageLinks(t forum.TopicSummary, s Settings, b LinkBuilder) []Link {
	if b == nil {
		b = RouteBuilder{}
	}
	n := PageCount(t, s.PostsPerPage)
	link := func(i int) Link {
		return Link{
			Page:  i,
			Label: strconv.Itoa(i),
			Href:  b.Build("topics", t.Slug, i),
		}
	}

	if n > s.TruncateAfter && n > 2*keep {
		links := make([]Link, 0, 2*keep+1)
		for i := 1; i <= keep; i++ {
			links = append(links, link(i))
		}
		links = append(links, Link{Label: Ellipsis})
		for i := n - keep + 1; i <= n; i++ {
			links = append(links, link(i))
		}
		return links
	}

	links := make([]Link, 0, n)
	for i := 1; i <= n; i++ {
		links = append(links, link(i))
	}
	return links
}
