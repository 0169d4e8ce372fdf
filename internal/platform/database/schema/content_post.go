package schema

// ContentPostTable represents the 'content.post' table
type ContentPostTable struct {
	Table        string
	ID           string
	AuthorID     string
	Title        string
	Subtitle     string
	Blocks       string
	Anchors      string
	CoverImage   string
	Tags         string
	LikeCount    string
	DislikeCount string
	CommentCount string
	CreatedAt    string
	UpdatedAt    string
}

// ContentPost is the schema definition for content.post
var ContentPost = ContentPostTable{
	Table:        "content.post",
	ID:           "id",
	AuthorID:     "authorid",
	Title:        "title",
	Subtitle:     "subtitle",
	Blocks:       "blocks",
	Anchors:      "anchors",
	CoverImage:   "coverimage",
	Tags:         "tags",
	LikeCount:    "likecount",
	DislikeCount: "dislikecount",
	CommentCount: "commentcount",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

// Columns returns all standard column names
func (t ContentPostTable) Columns() []string {
	return []string{
		t.ID, t.AuthorID, t.Title, t.Subtitle, t.Blocks, t.Anchors,
		t.CoverImage, t.Tags, t.LikeCount, t.DislikeCount, t.CommentCount, t.CreatedAt, t.UpdatedAt,
	}
}
