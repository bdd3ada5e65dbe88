package api

import "fmt"

// Endpoints maps logical operations to the opaque path tokens the backend
// assigns. The values are configuration, not logic: the backend rotates
// them, and swapping the table (WithEndpoints) must never touch call sites.
type Endpoints struct {
	// Register creates an account. POST, JSON body.
	Register string

	// Login exchanges credentials for a bearer token. POST, form-encoded.
	Login string

	// Logout is assigned by the backend but unused: logout is client-local
	// (the token cookie is deleted, no round trip). Kept so a full table
	// swap stays one-to-one with the backend's mapping.
	Logout string

	// Profile reads (GET) and partially updates (PUT) the current user.
	Profile string

	// Posts is the posts collection root. Post sub-resources (comments,
	// reactions) hang off it by id.
	Posts string

	// Comments is the comment collection root, used only for deletes by
	// comment id.
	Comments string

	// Reactions is assigned by the backend but unused: reaction reads and
	// writes go through the post-scoped paths under Posts.
	Reactions string
}

// DefaultEndpoints returns the path table currently assigned by the
// Haivler backend.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Register:  "/api/x/1f217a698b25",
		Login:     "/api/x/9592fc5373e2",
		Logout:    "/api/x/3f6b4e4dc96d",
		Profile:   "/api/x/5baaf1c55a0a",
		Posts:     "/api/x/ff0d498c575b",
		Comments:  "/api/x/0ebcf2cda524",
		Reactions: "/api/x/7e7cc3288efb",
	}
}

// post returns the path of a single post.
func (e Endpoints) post(id int64) string {
	return fmt.Sprintf("%s/%d", e.Posts, id)
}

// postComments returns the comment collection path of a post.
func (e Endpoints) postComments(postID int64) string {
	return fmt.Sprintf("%s/%d/comments", e.Posts, postID)
}

// postReactions returns the reaction summary path of a post.
func (e Endpoints) postReactions(postID int64) string {
	return fmt.Sprintf("%s/%d/reactions", e.Posts, postID)
}

// postReaction returns the path for placing or removing the current user's
// reaction on a post.
func (e Endpoints) postReaction(postID int64) string {
	return fmt.Sprintf("%s/%d/reaction", e.Posts, postID)
}

// comment returns the path of a single comment.
func (e Endpoints) comment(id int64) string {
	return fmt.Sprintf("%s/%d", e.Comments, id)
}
