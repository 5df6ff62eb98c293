package rss

import (
	"fmt"
	"strconv"

	"github.com/Dan9191/challenge-service/internal/models"
	"github.com/beevik/etree"
)

// ContentType is the media type of rendered documents
const ContentType = "application/rss+xml; charset=utf-8"

// Channel describes the feed itself
type Channel struct {
	Title       string
	Link        string
	Description string
}

// Render builds an RSS 2.0 document with one item per challenge.
// Relative media urls are resolved against ch.Link.
func Render(ch Channel, challenges []models.Challenge) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("rss")
	root.CreateAttr("version", "2.0")

	channel := root.CreateElement("channel")
	channel.CreateElement("title").SetText(ch.Title)
	channel.CreateElement("link").SetText(ch.Link)
	channel.CreateElement("description").SetText(ch.Description)

	for _, c := range challenges {
		item := channel.CreateElement("item")
		item.CreateElement("title").SetText(c.Title)
		item.CreateElement("description").SetText(c.Description)

		guid := item.CreateElement("guid")
		guid.CreateAttr("isPermaLink", "false")
		guid.SetText(strconv.FormatInt(c.ID, 10))

		for _, tag := range c.Tags {
			item.CreateElement("category").SetText(tag)
		}

		if c.MediaURL != nil {
			enclosure := item.CreateElement("enclosure")
			enclosure.CreateAttr("url", ch.Link+*c.MediaURL)
			enclosure.CreateAttr("length", "0")
			enclosure.CreateAttr("type", "application/octet-stream")
		}
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render rss: %w", err)
	}
	return out, nil
}
