// Package components provides the platform component library available to
// profile templates: photo, name, bio, posts, guestbook, and the structural
// containers. Each component registers a property schema and a templ
// implementation; the registry is populated once at startup.
package components

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/threadstead/threadstead/internal/registry"
	"github.com/threadstead/threadstead/internal/types"
)

// RegisterBuiltins installs the platform component set into reg.
func RegisterBuiltins(reg *registry.Registry) error {
	all := []*registry.Registration{
		profilePhoto(),
		displayName(),
		bio(),
		blogPosts(),
		guestbook(),
		websiteDisplay(),
		followButton(),
		profileHero(),
		imageGallery(),
		tabs(),
		tab(),
	}
	for _, r := range all {
		if err := reg.Register(r); err != nil {
			return fmt.Errorf("registering %s: %w", r.Name, err)
		}
	}
	return nil
}

func component(fn func(ctx context.Context, w io.Writer) error) templ.Component {
	return templ.ComponentFunc(fn)
}

func profilePhoto() *registry.Registration {
	return &registry.Registration{
		Name:        "ProfilePhoto",
		Description: "The owner's avatar image",
		Kind:        registry.KindLeaf,
		Interactive: true,
		Props: map[string]registry.PropSpec{
			"size":  {Type: registry.PropEnum, Enum: []string{"xs", "sm", "md", "lg", "xl"}, Default: "md"},
			"shape": {Type: registry.PropEnum, Enum: []string{"circle", "square", "rounded"}, Default: "circle"},
		},
		Implementation: func(props map[string]any, data *types.ResidentData, children templ.Component) templ.Component {
			return component(func(ctx context.Context, w io.Writer) error {
				size := propString(props, "size", "md")
				shape := propString(props, "shape", "circle")
				src := data.Owner.AvatarURL
				if src == "" {
					src = "/assets/default-avatar.png"
				}
				_, err := fmt.Fprintf(w,
					`<img class="profile-photo photo-%s photo-%s" src="%s" alt="%s" />`,
					size, shape, html.EscapeString(src),
					html.EscapeString(data.Owner.DisplayName))
				return err
			})
		},
	}
}

func displayName() *registry.Registration {
	return &registry.Registration{
		Name:        "DisplayName",
		Description: "The owner's display name",
		Kind:        registry.KindLeaf,
		Interactive: true,
		Props: map[string]registry.PropSpec{
			"as": {Type: registry.PropEnum, Enum: []string{"h1", "h2", "h3", "h4", "span", "div"}, Default: "h2"},
		},
		Implementation: func(props map[string]any, data *types.ResidentData, children templ.Component) templ.Component {
			return component(func(ctx context.Context, w io.Writer) error {
				tag := propString(props, "as", "h2")
				name := data.Owner.DisplayName
				if name == "" {
					name = data.Owner.Handle
				}
				_, err := fmt.Fprintf(w, `<%s class="display-name">%s</%s>`,
					tag, html.EscapeString(name), tag)
				return err
			})
		},
	}
}

func bio() *registry.Registration {
	return &registry.Registration{
		Name:        "Bio",
		Description: "The owner's bio text",
		Kind:        registry.KindLeaf,
		Interactive: true,
		Props:       map[string]registry.PropSpec{},
		Implementation: func(props map[string]any, data *types.ResidentData, children templ.Component) templ.Component {
			return component(func(ctx context.Context, w io.Writer) error {
				_, err := fmt.Fprintf(w, `<p class="profile-bio">%s</p>`,
					html.EscapeString(data.Bio))
				return err
			})
		},
	}
}

func blogPosts() *registry.Registration {
	return &registry.Registration{
		Name:        "BlogPosts",
		Description: "The owner's recent posts",
		Kind:        registry.KindLeaf,
		Interactive: true,
		Props: map[string]registry.PropSpec{
			"limit": {Type: registry.PropNumber, Default: 5, Min: registry.Float(1), Max: registry.Float(20)},
		},
		Implementation: func(props map[string]any, data *types.ResidentData, children templ.Component) templ.Component {
			return component(func(ctx context.Context, w io.Writer) error {
				limit := propInt(props, "limit", 5)
				if _, err := io.WriteString(w, `<ul class="blog-posts">`); err != nil {
					return err
				}
				for i, post := range data.Posts {
					if i >= limit {
						break
					}
					if _, err := fmt.Fprintf(w,
						`<li class="blog-post"><a href="%s">%s</a><p>%s</p></li>`,
						html.EscapeString(post.URL),
						html.EscapeString(post.Title),
						html.EscapeString(post.Excerpt)); err != nil {
						return err
					}
				}
				_, err := io.WriteString(w, `</ul>`)
				return err
			})
		},
	}
}

func guestbook() *registry.Registration {
	return &registry.Registration{
		Name:        "Guestbook",
		Description: "Messages visitors left for the owner",
		Kind:        registry.KindLeaf,
		Interactive: true,
		Props: map[string]registry.PropSpec{
			"limit": {Type: registry.PropNumber, Default: 10, Min: registry.Float(1), Max: registry.Float(50)},
		},
		Implementation: func(props map[string]any, data *types.ResidentData, children templ.Component) templ.Component {
			return component(func(ctx context.Context, w io.Writer) error {
				limit := propInt(props, "limit", 10)
				if _, err := io.WriteString(w, `<div class="guestbook"><ol class="guestbook-entries">`); err != nil {
					return err
				}
				for i, entry := range data.Guestbook {
					if i >= limit {
						break
					}
					if _, err := fmt.Fprintf(w,
						`<li class="guestbook-entry"><strong>%s</strong> %s</li>`,
						html.EscapeString(entry.Author),
						html.EscapeString(entry.Message)); err != nil {
						return err
					}
				}
				if _, err := io.WriteString(w, `</ol>`); err != nil {
					return err
				}
				if data.Capabilities.CanGuestbook {
					if _, err := io.WriteString(w, `<a class="guestbook-sign" href="#sign">Sign the guestbook</a>`); err != nil {
						return err
					}
				}
				_, err := io.WriteString(w, `</div>`)
				return err
			})
		},
	}
}

func websiteDisplay() *registry.Registration {
	return &registry.Registration{
		Name:        "WebsiteDisplay",
		Description: "The owner's external website links",
		Kind:        registry.KindLeaf,
		Interactive: false,
		Props:       map[string]registry.PropSpec{},
		Implementation: func(props map[string]any, data *types.ResidentData, children templ.Component) templ.Component {
			return component(func(ctx context.Context, w io.Writer) error {
				if _, err := io.WriteString(w, `<ul class="website-links">`); err != nil {
					return err
				}
				for _, site := range data.Websites {
					if _, err := fmt.Fprintf(w, `<li><a href="%s" rel="me">%s</a></li>`,
						html.EscapeString(site.URL),
						html.EscapeString(site.Label)); err != nil {
						return err
					}
				}
				_, err := io.WriteString(w, `</ul>`)
				return err
			})
		},
	}
}

func followButton() *registry.Registration {
	return &registry.Registration{
		Name:        "FollowButton",
		Description: "Button letting the viewer follow the owner",
		Kind:        registry.KindLeaf,
		Interactive: true,
		Props: map[string]registry.PropSpec{
			"label": {Type: registry.PropString, Default: "Follow"},
		},
		Implementation: func(props map[string]any, data *types.ResidentData, children templ.Component) templ.Component {
			return component(func(ctx context.Context, w io.Writer) error {
				label := propString(props, "label", "Follow")
				disabled := ""
				if !data.Capabilities.CanFollow {
					disabled = ` disabled="disabled"`
				}
				_, err := fmt.Fprintf(w,
					`<button class="follow-button" data-target="%s"%s>%s</button>`,
					html.EscapeString(data.Owner.Handle), disabled, html.EscapeString(label))
				return err
			})
		},
	}
}

func profileHero() *registry.Registration {
	return &registry.Registration{
		Name:        "ProfileHero",
		Description: "Structural banner wrapping arbitrary children",
		Kind:        registry.KindContainer,
		Interactive: false,
		Props: map[string]registry.PropSpec{
			"variant": {Type: registry.PropEnum, Enum: []string{"plain", "tape", "polaroid"}, Default: "plain"},
		},
		Implementation: func(props map[string]any, data *types.ResidentData, children templ.Component) templ.Component {
			return component(func(ctx context.Context, w io.Writer) error {
				variant := propString(props, "variant", "plain")
				if _, err := fmt.Fprintf(w, `<section class="profile-hero hero-%s">`, variant); err != nil {
					return err
				}
				if children != nil {
					if err := children.Render(ctx, w); err != nil {
						return err
					}
				}
				_, err := io.WriteString(w, `</section>`)
				return err
			})
		},
	}
}

func imageGallery() *registry.Registration {
	return &registry.Registration{
		Name:        "ImageGallery",
		Description: "Grid of the owner's media images",
		Kind:        registry.KindLeaf,
		Interactive: true,
		Props: map[string]registry.PropSpec{
			"columns": {Type: registry.PropNumber, Default: 3, Min: registry.Float(1), Max: registry.Float(6)},
		},
		Implementation: func(props map[string]any, data *types.ResidentData, children templ.Component) templ.Component {
			return component(func(ctx context.Context, w io.Writer) error {
				columns := propInt(props, "columns", 3)
				if _, err := fmt.Fprintf(w, `<div class="image-gallery" style="--gallery-columns: %d">`, columns); err != nil {
					return err
				}
				for _, img := range data.Images {
					if _, err := fmt.Fprintf(w, `<figure><img src="%s" alt="%s" /></figure>`,
						html.EscapeString(img.URL),
						html.EscapeString(img.Alt)); err != nil {
						return err
					}
				}
				_, err := io.WriteString(w, `</div>`)
				return err
			})
		},
	}
}

func tabs() *registry.Registration {
	return &registry.Registration{
		Name:            "Tabs",
		Description:     "Tabbed container; accepts Tab children only",
		Kind:            registry.KindContainer,
		Interactive:     true,
		AcceptsChildren: []string{"Tab"},
		Props:           map[string]registry.PropSpec{},
		Implementation: func(props map[string]any, data *types.ResidentData, children templ.Component) templ.Component {
			return component(func(ctx context.Context, w io.Writer) error {
				if _, err := io.WriteString(w, `<div class="profile-tabs">`); err != nil {
					return err
				}
				if children != nil {
					if err := children.Render(ctx, w); err != nil {
						return err
					}
				}
				_, err := io.WriteString(w, `</div>`)
				return err
			})
		},
	}
}

func tab() *registry.Registration {
	return &registry.Registration{
		Name:           "Tab",
		Description:    "One pane of a Tabs container",
		Kind:           registry.KindContainer,
		Interactive:    true,
		RequiredParent: "Tabs",
		Props: map[string]registry.PropSpec{
			"title": {Type: registry.PropString, Required: true, Default: "Tab"},
		},
		Implementation: func(props map[string]any, data *types.ResidentData, children templ.Component) templ.Component {
			return component(func(ctx context.Context, w io.Writer) error {
				title := propString(props, "title", "Tab")
				if _, err := fmt.Fprintf(w, `<div class="profile-tab" data-title="%s">`,
					html.EscapeString(title)); err != nil {
					return err
				}
				if children != nil {
					if err := children.Render(ctx, w); err != nil {
						return err
					}
				}
				_, err := io.WriteString(w, `</div>`)
				return err
			})
		},
	}
}

func propString(props map[string]any, name, fallback string) string {
	if v, ok := props[name].(string); ok && v != "" {
		return v
	}
	return fallback
}

func propInt(props map[string]any, name string, fallback int) int {
	switch v := props[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}
