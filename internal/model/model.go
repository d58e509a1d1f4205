// Package model defines domain entities used by stores and the facade.
package model

// User is the signed-in identity. ID and Email are owned by the identity
// provider; DisplayName and AvatarURL are resolved by the identity adapter
// and may be overridden by a stored profile.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// StoryStatus is the moderation state of a story.
type StoryStatus string

// Moderation states. New stories always start as pending review.
const (
	StatusPendingReview StoryStatus = "pending_review"
	StatusPublished     StoryStatus = "published"
	StatusRejected      StoryStatus = "rejected"
)

// Story is a piece of user-submitted content. ID and AuthorID are immutable
// after creation; the remaining fields may be merged in place.
type Story struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Category         string      `json:"category"`
	ShortDescription string      `json:"shortDescription"`
	Content          string      `json:"content"`
	Summary          string      `json:"summary"`
	Tags             []string    `json:"tags"`
	FileName         string      `json:"fileName"`
	AuthorID         string      `json:"authorId"`
	AuthorName       string      `json:"authorName"`
	Status           StoryStatus `json:"status"`
	ImageURL         string      `json:"imageUrl"`
}

// Comment is an append-only remark on a story. Timestamp is unix milliseconds.
type Comment struct {
	ID             string `json:"id"`
	ResourceID     string `json:"resourceId"`
	AuthorID       string `json:"authorId"`
	AuthorName     string `json:"authorName"`
	AuthorImageURL string `json:"authorImageUrl"`
	Text           string `json:"text"`
	Timestamp      int64  `json:"timestamp"`
}

// Report flags a story for moderation. At most one exists per
// (ResourceID, ReporterID) pair.
type Report struct {
	ResourceID    string `json:"resourceId"`
	ReporterID    string `json:"reporterId"`
	Timestamp     int64  `json:"timestamp"`
	ResourceTitle string `json:"resourceTitle"`
}

// EmpathyRating is one user's 1..5 sentiment rating of a story.
type EmpathyRating struct {
	UserID string `json:"userId"`
	Rating int    `json:"rating"`
}

// CommunityData is the shared persisted blob holding every community-wide
// collection. Likes map a resource id to the ids of users who liked it;
// EmpathyRatings map a resource id to its rating entries.
type CommunityData struct {
	Stories        []Story                    `json:"stories"`
	Comments       []Comment                  `json:"comments"`
	Likes          map[string][]string        `json:"likes"`
	Reports        []Report                   `json:"reports"`
	EmpathyRatings map[string][]EmpathyRating `json:"empathyRatings"`
}

// Profile is the per-user display override persisted under a user-scoped key.
type Profile struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}
