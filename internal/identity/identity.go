// Package identity wraps the external identity provider and derives the
// effective signed-in user from its events.
package identity

import "context"

// ProviderUser is the raw identity delivered by the provider.
type ProviderUser struct {
	ID          string
	Email       string
	DisplayName string
}

// Handler receives identity change events; nil means signed out.
type Handler func(*ProviderUser)

// Provider is the external identity boundary. Its internal protocol is out
// of scope; failures from Login/Signup/Logout propagate to the caller.
type Provider interface {
	// Login authenticates with email and password and emits the identity.
	Login(ctx context.Context, email, password string) error
	// Signup creates an account and signs the user in.
	Signup(ctx context.Context, email, password string) error
	// Logout ends the session and emits a nil identity.
	Logout(ctx context.Context) error
	// UpdateDisplayName stores the provider-side display name.
	UpdateDisplayName(ctx context.Context, name string) error
	// Subscribe registers a handler for identity change events.
	Subscribe(h Handler)
}
