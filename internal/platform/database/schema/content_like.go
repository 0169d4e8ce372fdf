package schema

// ContentLikeTable represents the 'content.like' table
type ContentLikeTable struct {
	Table     string
	ID        string
	UserID    string
	PostID    string
	CommentID string
	IsLiked   string
	CreatedAt string
	UpdatedAt string
}

// ContentLike is the schema definition for content.like
var ContentLike = ContentLikeTable{
	Table:     `content."like"`,
	ID:        "id",
	UserID:    "userid",
	PostID:    "postid",
	CommentID: "commentid",
	IsLiked:   "isliked",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

// Columns returns all standard column names
func (t ContentLikeTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.PostID, t.CommentID, t.IsLiked, t.CreatedAt, t.UpdatedAt,
	}
}
