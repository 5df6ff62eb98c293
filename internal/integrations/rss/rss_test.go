package rss

import (
	"testing"

	"github.com/Dan9191/challenge-service/internal/models"
	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	media := "/uploads/1-run.mp4"
	challenges := []models.Challenge{
		{ID: 1, Title: "Run 5k", Description: "go outside", Tags: []string{"fitness", " outdoor"}, MediaURL: &media},
		{ID: 2, Title: "Paint", Description: "<b>colors</b>", Tags: []string{"art"}},
	}

	out, err := Render(Channel{Title: "Challenges", Link: "http://localhost:3001", Description: "latest"}, challenges)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))

	assert.Equal(t, "2.0", doc.Root().SelectAttrValue("version", ""))
	assert.Equal(t, "Challenges", doc.FindElement("//channel/title").Text())

	items := doc.FindElements("//channel/item")
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "Run 5k", first.FindElement("./title").Text())
	assert.Equal(t, "1", first.FindElement("./guid").Text())
	categories := first.FindElements("./category")
	require.Len(t, categories, 2)
	assert.Equal(t, " outdoor", categories[1].Text())
	enclosure := first.FindElement("./enclosure")
	require.NotNil(t, enclosure)
	assert.Equal(t, "http://localhost:3001/uploads/1-run.mp4", enclosure.SelectAttrValue("url", ""))

	second := items[1]
	assert.Equal(t, "<b>colors</b>", second.FindElement("./description").Text())
	assert.Nil(t, second.FindElement("./enclosure"))
}

func TestRenderEmpty(t *testing.T) {
	out, err := Render(Channel{Title: "Challenges"}, nil)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	assert.Empty(t, doc.FindElements("//item"))
}
