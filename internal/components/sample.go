package components

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/threadstead/threadstead/internal/types"
)

var titleCaser = cases.Title(language.English)

// SampleResidentData builds a realistic data context for previewing a
// template without a live profile behind it. handle seeds the owner
// identity so previews of different templates stay distinguishable.
func SampleResidentData(handle string) types.ResidentData {
	if handle == "" {
		handle = "pixel-smith"
	}
	displayName := titleCaser.String(strings.ReplaceAll(handle, "-", " "))
	now := time.Now()

	return types.ResidentData{
		Owner: types.Resident{
			ID:          "resident-sample",
			Handle:      handle,
			DisplayName: displayName,
			AvatarURL:   "/assets/sample-avatar.png",
		},
		Bio: "Building a little corner of the independent web, one pixel at a time.",
		Posts: []types.BlogPost{
			{
				ID:          "post-1",
				Title:       "Redecorating my pixel home",
				Excerpt:     "New wallpaper, new guestbook, same cozy corner.",
				URL:         "/home/" + handle + "/post/redecorating",
				PublishedAt: now.Add(-48 * time.Hour),
			},
			{
				ID:          "post-2",
				Title:       "Webring season",
				Excerpt:     "Joined three rings this week. The neighborhood keeps growing.",
				URL:         "/home/" + handle + "/post/webring-season",
				PublishedAt: now.Add(-9 * 24 * time.Hour),
			},
		},
		Guestbook: []types.GuestbookEntry{
			{ID: "gb-1", Author: "mossgarden", Message: "Love the new layout!", CreatedAt: now.Add(-3 * time.Hour)},
			{ID: "gb-2", Author: "dialup-dreamer", Message: "Signing from the other side of the ring.", CreatedAt: now.Add(-30 * time.Hour)},
		},
		Images: []types.ProfileImage{
			{URL: "/assets/sample-garden.png", Alt: "A pixel-art garden"},
			{URL: "/assets/sample-desk.png", Alt: "A tidy pixel desk"},
		},
		Websites: []types.Website{
			{Label: "My zine archive", URL: "https://example.com/zines"},
			{Label: "Photo journal", URL: "https://example.com/photos"},
		},
		Capabilities: types.Capabilities{
			CanComment:   true,
			CanFollow:    true,
			CanGuestbook: true,
		},
	}
}
