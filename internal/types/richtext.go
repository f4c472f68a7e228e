package types

type BlockKind string

const (
	BlockParagraph   BlockKind = "paragraph"
	BlockText        BlockKind = "text"
	BlockUserMention BlockKind = "user"
	BlockLink        BlockKind = "link"
	BlockAttachment  BlockKind = "attachment"
)

// Block is one node of a message's rich-text tree. Leaf nodes carry
// text or a reference, container nodes carry children.
type Block struct {
	Kind     BlockKind `json:"kind"`
	Text     string    `json:"text,omitempty"`
	Bold     bool      `json:"bold,omitempty"`
	Italic   bool      `json:"italic,omitempty"`
	UserID   string    `json:"user_id,omitempty"`
	URL      string    `json:"url,omitempty"`
	Children []Block   `json:"children,omitempty"`
}

// PlainText flattens a block tree into its text content. Mentions
// render as an @-prefixed user id placeholder.
func PlainText(blocks []Block) string {
	var s string
	for _, b := range blocks {
		switch b.Kind {
		case BlockText:
			s += b.Text
		case BlockUserMention:
			s += "@" + b.UserID
		case BlockLink:
			if b.Text != "" {
				s += b.Text
			} else {
				s += b.URL
			}
		default:
			s += PlainText(b.Children)
		}
	}
	return s
}

// Mentions returns the ids of all users referenced by mention nodes
// anywhere in the block tree.
func Mentions(blocks []Block) []string {
	var ids []string
	for _, b := range blocks {
		if b.Kind == BlockUserMention && b.UserID != "" {
			ids = append(ids, b.UserID)
		}
		ids = append(ids, Mentions(b.Children)...)
	}
	return ids
}

// MentionsUser reports whether the block tree mentions the given user.
func MentionsUser(blocks []Block, userID string) bool {
	for _, b := range blocks {
		if b.Kind == BlockUserMention && b.UserID == userID {
			return true
		}
		if MentionsUser(b.Children, userID) {
			return true
		}
	}
	return false
}

// TextBlock builds a single-paragraph message body from plain text.
func TextBlock(text string) []Block {
	return []Block{{
		Kind:     BlockParagraph,
		Children: []Block{{Kind: BlockText, Text: text}},
	}}
}
