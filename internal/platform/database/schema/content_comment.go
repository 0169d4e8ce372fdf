package schema

// ContentCommentTable represents the 'content.comment' table
type ContentCommentTable struct {
	Table        string
	ID           string
	PostID       string
	ParentID     string
	AuthorID     string
	Body         string
	LikeCount    string
	DislikeCount string
	ReplyCount   string
	CreatedAt    string
	UpdatedAt    string
}

// ContentComment is the schema definition for content.comment
var ContentComment = ContentCommentTable{
	Table:        "content.comment",
	ID:           "id",
	PostID:       "postid",
	ParentID:     "parentid",
	AuthorID:     "authorid",
	Body:         "body",
	LikeCount:    "likecount",
	DislikeCount: "dislikecount",
	ReplyCount:   "replycount",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

// Columns returns all standard column names
func (t ContentCommentTable) Columns() []string {
	return []string{
		t.ID, t.PostID, t.ParentID, t.AuthorID, t.Body,
		t.LikeCount, t.DislikeCount, t.ReplyCount, t.CreatedAt, t.UpdatedAt,
	}
}
