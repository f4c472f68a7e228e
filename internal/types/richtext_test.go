package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	blocks := []Block{{
		Kind: BlockParagraph,
		Children: []Block{
			{Kind: BlockText, Text: "hey "},
			{Kind: BlockUserMention, UserID: "u2"},
			{Kind: BlockText, Text: ", see "},
			{Kind: BlockLink, URL: "https://example.com", Text: "this"},
		},
	}}

	assert.Equal(t, "hey @u2, see this", PlainText(blocks))
}

func TestPlainText_linkWithoutLabel(t *testing.T) {
	blocks := []Block{{Kind: BlockLink, URL: "https://example.com"}}
	assert.Equal(t, "https://example.com", PlainText(blocks))
}

func TestMentions(t *testing.T) {
	blocks := []Block{{
		Kind: BlockParagraph,
		Children: []Block{
			{Kind: BlockUserMention, UserID: "u2"},
			{Kind: BlockText, Text: " and "},
			{Kind: BlockUserMention, UserID: "u3"},
		},
	}}

	assert.Equal(t, []string{"u2", "u3"}, Mentions(blocks))
	assert.True(t, MentionsUser(blocks, "u2"))
	assert.False(t, MentionsUser(blocks, "u4"))
	assert.Empty(t, Mentions(nil))
}

func TestTextBlock(t *testing.T) {
	blocks := TextBlock("hello")
	assert.Equal(t, "hello", PlainText(blocks))
}
