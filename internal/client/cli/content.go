package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/wpkeeper/internal/client/models"
	"github.com/dmitrijs2005/wpkeeper/internal/client/render"
)

const titleWidth = 60

func (a *App) posts(ctx context.Context, _ []string) error {
	if _, err := a.requireActive(); err != nil {
		return err
	}
	var posts []models.Post
	a.withSpinner("loading posts", func() { posts = a.syncer.FetchPosts(ctx) })

	w := a.table("ID", "STATUS", "DATE", "TITLE")
	defer w.Flush()
	for _, p := range posts {
		row(w, p.ID, p.Status, p.Date, render.Truncate(render.Text(p.Title.String()), titleWidth))
	}
	return nil
}

func (a *App) pages(ctx context.Context, _ []string) error {
	if _, err := a.requireActive(); err != nil {
		return err
	}
	var pages []models.Page
	a.withSpinner("loading pages", func() { pages = a.syncer.FetchPages(ctx) })

	w := a.table("ID", "STATUS", "PARENT", "TITLE")
	defer w.Flush()
	for _, p := range pages {
		row(w, p.ID, p.Status, p.Parent, render.Truncate(render.Text(p.Title.String()), titleWidth))
	}
	return nil
}

func (a *App) users(ctx context.Context, _ []string) error {
	if _, err := a.requireActive(); err != nil {
		return err
	}
	var users []models.User
	a.withSpinner("loading users", func() { users = a.syncer.FetchUsers(ctx) })

	w := a.table("ID", "NAME", "SLUG", "ROLES")
	defer w.Flush()
	for _, u := range users {
		row(w, u.ID, u.Name, u.Slug, strings.Join(u.Roles, ","))
	}
	return nil
}

func (a *App) plugins(ctx context.Context, _ []string) error {
	if _, err := a.requireActive(); err != nil {
		return err
	}
	var plugins []models.Plugin
	a.withSpinner("loading plugins", func() { plugins = a.syncer.FetchPlugins(ctx) })

	w := a.table("PLUGIN", "STATUS", "VERSION", "NAME")
	defer w.Flush()
	for _, p := range plugins {
		row(w, p.Plugin, p.Status, p.Version, p.Name)
	}
	return nil
}

func (a *App) themes(ctx context.Context, _ []string) error {
	if _, err := a.requireActive(); err != nil {
		return err
	}
	var themes []models.Theme
	a.withSpinner("loading themes", func() { themes = a.syncer.FetchThemes(ctx) })

	w := a.table("STYLESHEET", "STATUS", "VERSION", "NAME")
	defer w.Flush()
	for _, t := range themes {
		row(w, t.Stylesheet, t.Status, t.Version, render.Text(t.Name.String()))
	}
	return nil
}

// show prints one post from the mirror, fetching posts first when the
// mirror does not hold it.
func (a *App) show(ctx context.Context, args []string) error {
	site, err := a.requireActive()
	if err != nil {
		return err
	}
	id, err := parseID(args[0], "post id")
	if err != nil {
		return err
	}

	post, ok := findPost(a.syncer.Posts(), id)
	if !ok {
		a.withSpinner("loading posts", func() { post, ok = findPost(a.syncer.FetchPosts(ctx), id) })
	}
	if !ok {
		a.printf("Post %d not found.\n", id)
		return nil
	}

	a.printf("# %s\n\n", render.Text(post.Title.String()))
	a.printf("Status: %s  Date: %s\n", post.Status, post.Date)
	if post.Link != "" {
		a.printf("Link: %s\n", post.Link)
	}
	a.printf("\n%s\n", render.Markdown(post.Content.String(), site.BaseURL()))
	return nil
}

func findPost(posts []models.Post, id int) (models.Post, bool) {
	for _, p := range posts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}

func (a *App) overview(ctx context.Context, _ []string) error {
	site, err := a.requireActive()
	if err != nil {
		return err
	}
	var ov models.ContentOverview
	a.withSpinner("counting", func() { ov = a.syncer.ContentOverview(ctx) })

	a.printf("%s\n", site.Name)
	w := a.table("POSTS", "PAGES", "USERS", "COMMENTS", "CATEGORIES", "TAGS")
	defer w.Flush()
	row(w, ov.Posts, ov.Pages, ov.Users, ov.Comments, ov.Categories, ov.Tags)
	return nil
}
