package types

import "time"

// Resident identifies a ThreadStead user taking part in a render, either as
// the profile owner or as the viewer.
type Resident struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// BlogPost is one entry of the owner's post feed exposed to templates.
type BlogPost struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

// GuestbookEntry is one message left on the owner's guestbook.
type GuestbookEntry struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProfileImage is one image from the owner's media gallery.
type ProfileImage struct {
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Caption string `json:"caption,omitempty"`
}

// Website is one external link the owner surfaces on their profile.
type Website struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Capabilities are the viewer's permission flags for interactive islands.
type Capabilities struct {
	CanComment   bool `json:"canComment"`
	CanFollow    bool `json:"canFollow"`
	CanGuestbook bool `json:"canGuestbook"`
}

// ResidentData is the full data context a template renders against: the
// owner's profile content plus the viewer's capability flags.
type ResidentData struct {
	Owner        Resident         `json:"owner"`
	Viewer       *Resident        `json:"viewer,omitempty"`
	Bio          string           `json:"bio"`
	Posts        []BlogPost       `json:"posts"`
	Guestbook    []GuestbookEntry `json:"guestbook"`
	Images       []ProfileImage   `json:"images"`
	Websites     []Website        `json:"websites"`
	Capabilities Capabilities     `json:"capabilities"`
}
