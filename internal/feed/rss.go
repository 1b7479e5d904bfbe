package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title  string `xml:"title"`
	Link   string `xml:"link"`
	Source string `xml:"source"`
}

// Titles in some feeds arrive double-escaped, so entities can survive the
// XML decoder and are replaced a second time here.
var titleEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&#39;", "'",
	"&quot;", `"`,
)

// ParseRSS decodes an RSS 2.0 document into items. Items without both a title
// and a link are dropped; a missing source becomes DefaultSource.
func ParseRSS(raw []byte) ([]Item, error) {
	var doc rssDocument
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode rss: %w", err)
	}

	items := make([]Item, 0, len(doc.Channel.Items))
	for _, ri := range doc.Channel.Items {
		title := strings.TrimSpace(ri.Title)
		link := strings.TrimSpace(ri.Link)
		if title == "" || link == "" {
			continue
		}
		source := strings.TrimSpace(ri.Source)
		if source == "" {
			source = DefaultSource
		}
		items = append(items, Item{
			Title:  titleEntities.Replace(title),
			URL:    link,
			Source: source,
		})
	}
	return items, nil
}
