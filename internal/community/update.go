package community

import "github.com/avelichko/storycircle/internal/model"

// StoryUpdate carries the fields UpdateStory may merge. Nil fields are left
// unchanged; the story id and author id are not part of the update surface.
type StoryUpdate struct {
	Title            *string
	Category         *string
	ShortDescription *string
	Content          *string
	Summary          *string
	Tags             []string
	FileName         *string
	AuthorName       *string
	Status           *model.StoryStatus
	ImageURL         *string
}

func (u StoryUpdate) apply(st *model.Story) {
	if u.Title != nil {
		st.Title = *u.Title
	}
	if u.Category != nil {
		st.Category = *u.Category
	}
	if u.ShortDescription != nil {
		st.ShortDescription = *u.ShortDescription
	}
	if u.Content != nil {
		st.Content = *u.Content
	}
	if u.Summary != nil {
		st.Summary = *u.Summary
	}
	if u.Tags != nil {
		st.Tags = append([]string(nil), u.Tags...)
	}
	if u.FileName != nil {
		st.FileName = *u.FileName
	}
	if u.AuthorName != nil {
		st.AuthorName = *u.AuthorName
	}
	if u.Status != nil {
		st.Status = *u.Status
	}
	if u.ImageURL != nil {
		st.ImageURL = *u.ImageURL
	}
}
