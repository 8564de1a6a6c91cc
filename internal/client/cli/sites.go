package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/wpkeeper/internal/client/models"
	"github.com/dmitrijs2005/wpkeeper/internal/common"
)

func (a *App) sites(_ context.Context, _ []string) error {
	sites := a.registry.Sites()
	if len(sites) == 0 {
		a.printf("No sites connected. Use 'connect' to add one.\n")
		return nil
	}

	activeID := ""
	if s := a.registry.Active(); s != nil {
		activeID = s.ID
	}

	w := a.table("", "ID", "NAME", "URL", "AUTH", "STATUS", "LAST CONNECTED")
	defer w.Flush()
	for _, s := range sites {
		marker := ""
		if s.ID == activeID {
			marker = "*"
		}
		status := "offline"
		if s.IsConnected {
			status = "online"
		}
		last := "-"
		if s.LastConnected != nil {
			last = s.LastConnected.Local().Format(time.DateTime)
		}
		row(w, marker, s.ID, s.Name, s.URL, s.AuthType, status, last)
	}
	return nil
}

// connect prompts for credentials; secrets are read without echo.
func (a *App) connect(ctx context.Context, _ []string) error {
	url, err := GetSimpleText(a.reader, "Site URL (e.g. https://example.com)", a.out)
	if err != nil {
		return err
	}

	kind, err := GetTextOrDefault(a.reader, "Authentication (app|jwt)", "app", a.out)
	if err != nil {
		return err
	}

	c := models.Credentials{URL: url}
	switch strings.ToLower(kind) {
	case "app", "application_password":
		c.AuthType = models.AuthApplicationPassword
		if c.Username, err = GetSimpleText(a.reader, "Username", a.out); err != nil {
			return err
		}
		if c.ApplicationPassword, err = GetSecret("Application password", a.out); err != nil {
			return err
		}
	case "jwt":
		c.AuthType = models.AuthJWT
		if c.Token, err = GetSecret("JWT token", a.out); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown authentication %q", kind)
	}

	a.withSpinner("connecting", func() { a.registry.ConnectSite(ctx, c) })
	return nil
}

// resolveSite accepts a full site id or a unique prefix of one.
func (a *App) resolveSite(ref string) (string, error) {
	var matches []string
	for _, s := range a.registry.Sites() {
		if s.ID == ref {
			return s.ID, nil
		}
		if strings.HasPrefix(s.ID, ref) {
			matches = append(matches, s.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", common.ErrSiteNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("site id %q is ambiguous", ref)
	}
}

func (a *App) disconnect(ctx context.Context, args []string) error {
	id, err := a.resolveSite(args[0])
	if err != nil {
		return err
	}
	a.withSpinner("disconnecting", func() { a.registry.DisconnectSite(ctx, id) })
	return nil
}

func (a *App) switchSite(ctx context.Context, args []string) error {
	id, err := a.resolveSite(args[0])
	if err != nil {
		return err
	}
	a.withSpinner("loading site", func() { a.registry.SwitchSite(ctx, id) })
	if s := a.registry.Active(); s != nil {
		a.printf("Active site: %s\n", s.Name)
	}
	return nil
}

func (a *App) refresh(ctx context.Context, _ []string) error {
	if _, err := a.requireActive(); err != nil {
		return err
	}
	a.withSpinner("refreshing", func() { a.syncer.RefreshAll(ctx) })
	a.printf("%d posts, %d pages, %d users, %d plugins, %d themes, %d courses, %d students\n",
		len(a.syncer.Posts()), len(a.syncer.Pages()), len(a.syncer.Users()),
		len(a.syncer.Plugins()), len(a.syncer.Themes()), len(a.syncer.Courses()), len(a.syncer.Students()))
	return nil
}
