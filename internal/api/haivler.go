// Package api provides the typed client for the Haivler REST backend.
//
// Haivler is an image-sharing social feed: users register, log in, post
// images with captions, react (like/dislike), and comment. This package is
// the single choke point for backend communication: the only component
// that constructs HTTP requests or reads the bearer token off the cookie
// store. Endpoint paths are opaque tokens assigned by the backend and
// resolved through a lookup table (see Endpoints).
//
// Quick start:
//
//	client := api.NewClient(
//	    api.WithBaseURL("http://localhost:8000"),
//	    api.WithTokenStore(cookies),
//	)
//
//	posts, err := client.Posts(ctx, 0, 10, api.SortNew)
//	if err != nil {
//	    var apiErr *api.APIError
//	    if errors.As(err, &apiErr) {
//	        fmt.Println(apiErr.Detail)
//	    }
//	}
package api

import "time"

// Sort selects the ordering of the post feed.
type Sort string

const (
	// SortNew orders posts newest first.
	SortNew Sort = "new"

	// SortPopular orders posts by reaction count.
	SortPopular Sort = "popular"
)

// ReactionType is the kind of reaction a user can place on a post.
// Creating a reaction of the opposite type replaces the existing one
// server-side; the client only forwards intent.
type ReactionType string

const (
	// ReactionLike marks a post as liked.
	ReactionLike ReactionType = "like"

	// ReactionDislike marks a post as disliked.
	ReactionDislike ReactionType = "dislike"
)

// Credentials are the login inputs. They are submitted form-url-encoded,
// not as JSON, a protocol distinction the backend requires for the login
// endpoint only.
type Credentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// Registration is the payload for creating a new account.
type Registration struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// TokenGrant is the backend's response to a successful login.
// AccessToken is opaque: it is persisted and attached verbatim, never
// parsed or inspected.
type TokenGrant struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserRecord is the authenticated user's profile as the backend reports it.
// Beyond ID and Username (needed for display and ownership checks) the
// record is opaque to this client and replaced wholesale on update.
type UserRecord struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileUpdate is a partial profile update. Only the fields the caller
// has decided have changed are serialized.
type ProfileUpdate struct {
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	Password  string `json:"password,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Post is a feed entry.
type Post struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	ImageURL     string      `json:"image_url"`
	UserID       int64       `json:"user_id"`
	User         *UserRecord `json:"user,omitempty"`
	LikeCount    int         `json:"like_count"`
	DislikeCount int         `json:"dislike_count"`
	CreatedAt    time.Time   `json:"created_at"`
}

// NewPost is the payload for creating a post. The image is required and is
// transported as a multipart file part; everything else rides alongside as
// form fields.
type NewPost struct {
	Title       string `validate:"required"`
	Description string
	// ImageName is the filename reported for the image part.
	ImageName string `validate:"required"`
	// Image is the raw image payload.
	Image []byte `validate:"required,min=1"`
}

// PostUpdate is a partial update of an existing post. Ownership is enforced
// by the backend; the client does not re-verify it.
type PostUpdate struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Comment is a sub-resource of a post.
type Comment struct {
	ID        int64       `json:"id"`
	PostID    int64       `json:"post_id"`
	UserID    int64       `json:"user_id"`
	User      *UserRecord `json:"user,omitempty"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// ReactionSummary is the aggregate reaction state of a post.
type ReactionSummary struct {
	LikeCount    int    `json:"like_count"`
	DislikeCount int    `json:"dislike_count"`
	UserReaction string `json:"user_reaction,omitempty"`
}
