package types

import "time"

// Card type discriminants.
const (
	CardTwitterPreview  = "twitter-post-preview"
	CardTwitterSuccess  = "twitter-post-success"
	CardLinkedInPreview = "linkedin-post-preview"
	CardLinkedInSuccess = "linkedin-post-success"
)

// Public URL templates for published posts.
const (
	TwitterPostURLTemplate  = "https://twitter.com/i/web/status/%s"
	LinkedInPostURLTemplate = "https://www.linkedin.com/feed/update/%s"
)

// Source is a research citation attached to a preview card.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Card is a posted-content card. A card starts as a preview
// (Posted=false) and transitions at most once to success, gaining the
// provider post id and public URL. Timestamp is milliseconds since
// epoch, matching the original wire format.
type Card struct {
	Type         string   `json:"type"`
	Content      string   `json:"content"`
	UserID       string   `json:"userId"`
	Timestamp    int64    `json:"timestamp"`
	Posted       bool     `json:"posted"`
	Sources      []Source `json:"sources,omitempty"`
	ResearchText string   `json:"researchText,omitempty"`

	// Set on success cards only.
	TweetID  string `json:"tweetId,omitempty"`
	TweetURL string `json:"tweetUrl,omitempty"`
	PostID   string `json:"postId,omitempty"`
	PostURL  string `json:"postUrl,omitempty"`
}

// NewTwitterPreview builds a preview card for a synthesized tweet.
func NewTwitterPreview(content, userID string, sources []Source, researchText string) *Card {
	return &Card{
		Type:         CardTwitterPreview,
		Content:      content,
		UserID:       userID,
		Timestamp:    time.Now().UnixMilli(),
		Posted:       false,
		Sources:      sources,
		ResearchText: researchText,
	}
}
