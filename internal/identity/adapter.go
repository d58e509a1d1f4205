package identity

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/avelichko/storycircle/internal/bookmark"
	"github.com/avelichko/storycircle/internal/model"
	"github.com/avelichko/storycircle/internal/profile"
)

// Adapter subscribes to provider identity events and materializes the
// effective User: provider defaults overlaid with the persisted profile
// override. On sign-out it clears the derived user and the bookmark store.
type Adapter struct {
	mu        sync.RWMutex
	current   *model.User
	profiles  *profile.Store
	bookmarks *bookmark.Store
	log       *zap.Logger
}

// NewAdapter wires the adapter to the provider's event stream.
func NewAdapter(p Provider, profiles *profile.Store, bookmarks *bookmark.Store, log *zap.Logger) *Adapter {
	a := &Adapter{profiles: profiles, bookmarks: bookmarks, log: log}
	p.Subscribe(a.onChange)
	return a
}

// onChange handles one identity event from the provider.
func (a *Adapter) onChange(pu *ProviderUser) {
	ctx := context.Background()

	if pu == nil {
		a.mu.Lock()
		a.current = nil
		a.mu.Unlock()
		a.bookmarks.Clear()
		return
	}

	u := model.User{
		ID:          pu.ID,
		Email:       pu.Email,
		DisplayName: resolveDisplayName(pu),
		AvatarURL:   AvatarURL(pu.ID),
	}

	// Overlay the stored override. Parse failures are logged inside the
	// profile store and surface as ErrNotFound, so defaults win.
	if p, err := a.profiles.Load(ctx, pu.ID); err == nil {
		if p.Name != "" {
			u.DisplayName = p.Name
		}
		if p.ImageURL != "" {
			u.AvatarURL = p.ImageURL
		}
	}

	a.mu.Lock()
	a.current = &u
	a.mu.Unlock()

	a.bookmarks.LoadFor(ctx, pu.ID)
	a.log.Info("signed in", zap.String("uid", pu.ID))
}

// Current returns the derived user, if signed in.
func (a *Adapter) Current() (model.User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.current == nil {
		return model.User{}, false
	}
	return *a.current, true
}

// SetCurrent replaces the in-memory user after a profile update.
func (a *Adapter) SetCurrent(u model.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = &u
}

// resolveDisplayName picks the provider name, then the email local part,
// then a generic fallback.
func resolveDisplayName(pu *ProviderUser) string {
	if pu.DisplayName != "" {
		return pu.DisplayName
	}
	if i := strings.IndexByte(pu.Email, '@'); i > 0 {
		return pu.Email[:i]
	}
	return "User"
}

// AvatarURL is the deterministic placeholder avatar seeded by user id.
func AvatarURL(uid string) string {
	return "https://picsum.photos/seed/" + uid + "/200/200"
}
