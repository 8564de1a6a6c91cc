package models

import (
	"encoding/json"
)

// Rendered is the {"rendered": ..., "raw": ...} envelope WordPress uses for
// titles, content and excerpts. A bare JSON string is accepted as well, since
// some endpoints (themes) return plain strings for the same fields.
type Rendered struct {
	Rendered  string `json:"rendered"`
	Raw       string `json:"raw,omitempty"`
	Protected bool   `json:"protected,omitempty"`
}

func (r *Rendered) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = Rendered{Rendered: s, Raw: s}
		return nil
	}

	type plain Rendered
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = Rendered(p)
	return nil
}

// String returns the rendered form, falling back to the raw one.
func (r Rendered) String() string {
	if r.Rendered != "" {
		return r.Rendered
	}
	return r.Raw
}

type Post struct {
	ID            int      `json:"id"`
	Date          string   `json:"date"`
	DateGMT       string   `json:"date_gmt"`
	GUID          Rendered `json:"guid"`
	Modified      string   `json:"modified"`
	ModifiedGMT   string   `json:"modified_gmt"`
	Slug          string   `json:"slug"`
	Status        string   `json:"status"`
	Type          string   `json:"type"`
	Link          string   `json:"link"`
	Title         Rendered `json:"title"`
	Content       Rendered `json:"content"`
	Excerpt       Rendered `json:"excerpt"`
	Author        int      `json:"author"`
	FeaturedMedia int      `json:"featured_media"`
	CommentStatus string   `json:"comment_status"`
	PingStatus    string   `json:"ping_status"`
	Sticky        bool     `json:"sticky"`
	Template      string   `json:"template"`
	Format        string   `json:"format"`
	Categories    []int    `json:"categories,omitempty"`
	Tags          []int    `json:"tags,omitempty"`
}

type Page struct {
	ID            int      `json:"id"`
	Date          string   `json:"date"`
	DateGMT       string   `json:"date_gmt"`
	GUID          Rendered `json:"guid"`
	Modified      string   `json:"modified"`
	ModifiedGMT   string   `json:"modified_gmt"`
	Slug          string   `json:"slug"`
	Status        string   `json:"status"`
	Type          string   `json:"type"`
	Link          string   `json:"link"`
	Title         Rendered `json:"title"`
	Content       Rendered `json:"content"`
	Excerpt       Rendered `json:"excerpt"`
	Author        int      `json:"author"`
	FeaturedMedia int      `json:"featured_media"`
	CommentStatus string   `json:"comment_status"`
	PingStatus    string   `json:"ping_status"`
	Template      string   `json:"template"`
	Parent        int      `json:"parent"`
	MenuOrder     int      `json:"menu_order"`
}

type User struct {
	ID           int               `json:"id"`
	Name         string            `json:"name"`
	URL          string            `json:"url"`
	Description  string            `json:"description"`
	Link         string            `json:"link"`
	Slug         string            `json:"slug"`
	AvatarURLs   map[string]string `json:"avatar_urls,omitempty"`
	Roles        []string          `json:"roles,omitempty"`
	Capabilities map[string]bool   `json:"capabilities,omitempty"`
}

type Plugin struct {
	Plugin      string   `json:"plugin"`
	Status      string   `json:"status"`
	Name        string   `json:"name"`
	PluginURI   string   `json:"plugin_uri"`
	Author      string   `json:"author"`
	AuthorURI   string   `json:"author_uri"`
	Description Rendered `json:"description"`
	Version     string   `json:"version"`
	NetworkOnly bool     `json:"network_only"`
	RequiresWP  string   `json:"requires_wp"`
	RequiresPHP string   `json:"requires_php"`
	TextDomain  string   `json:"textdomain"`
}

type Theme struct {
	Stylesheet  string          `json:"stylesheet"`
	Template    string          `json:"template"`
	Name        Rendered        `json:"name"`
	ThemeURI    Rendered        `json:"theme_uri"`
	Description Rendered        `json:"description"`
	Author      Rendered        `json:"author"`
	AuthorURI   Rendered        `json:"author_uri"`
	Version     string          `json:"version"`
	Status      string          `json:"status"`
	Tags        json.RawMessage `json:"tags,omitempty"`
	TextDomain  string          `json:"textdomain"`
}

// ContentOverview summarises the size of the active site.
type ContentOverview struct {
	Posts      int `json:"posts"`
	Pages      int `json:"pages"`
	Users      int `json:"users"`
	Comments   int `json:"comments"`
	Categories int `json:"categories"`
	Tags       int `json:"tags"`
}
