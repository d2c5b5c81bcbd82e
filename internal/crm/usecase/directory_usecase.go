package usecase

import (
	"context"

	"crm-mirror/internal/crm/domain/client"
)

// ContactPage is the directory response for contact lookups.
type ContactPage struct {
	Contacts []client.RemoteContact `json:"contacts"`
	Total    int                    `json:"total"`
}

// ListContacts searches the remote contact directory, serving repeats from
// the short-TTL cache when one is configured.
func (e *Engine) ListContacts(ctx context.Context, locationID, query string) (*ContactPage, error) {
	var page ContactPage
	if e.directory.Get(ctx, locationID, "contacts", query, &page) {
		return &page, nil
	}

	remote, _, err := e.clientFor(ctx, locationID)
	if err != nil {
		return nil, err
	}
	contacts, total, err := remote.SearchContacts(ctx, query)
	if err != nil {
		return nil, classifyRemoteError(err, "search contacts")
	}

	page = ContactPage{Contacts: contacts, Total: total}
	e.directory.Set(ctx, locationID, "contacts", query, page)
	return &page, nil
}

// ListUsers returns the location's users (assignee and follower candidates).
func (e *Engine) ListUsers(ctx context.Context, locationID string) ([]client.RemoteUser, error) {
	var users []client.RemoteUser
	if e.directory.Get(ctx, locationID, "users", "", &users) {
		return users, nil
	}

	remote, _, err := e.clientFor(ctx, locationID)
	if err != nil {
		return nil, err
	}
	users, err = remote.GetUsers(ctx)
	if err != nil {
		return nil, classifyRemoteError(err, "list users")
	}

	e.directory.Set(ctx, locationID, "users", "", users)
	return users, nil
}

// ListTags returns the location's contact tags.
func (e *Engine) ListTags(ctx context.Context, locationID string) ([]client.RemoteTag, error) {
	var tags []client.RemoteTag
	if e.directory.Get(ctx, locationID, "tags", "", &tags) {
		return tags, nil
	}

	remote, _, err := e.clientFor(ctx, locationID)
	if err != nil {
		return nil, err
	}
	tags, err = remote.GetTags(ctx)
	if err != nil {
		return nil, classifyRemoteError(err, "list tags")
	}

	e.directory.Set(ctx, locationID, "tags", "", tags)
	return tags, nil
}
