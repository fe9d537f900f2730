package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/commune-social/commune/internal/app/auth"
	"github.com/commune-social/commune/internal/app/models"
	"github.com/commune-social/commune/internal/app/models/dto"
)

// testEnv wires all four services over a single shared memStore, mirroring
// the production wiring in bootstrap.
type testEnv struct {
	store      *memStore
	bans       memBanStore
	moderators memModeratorStore
	postStore  memPostStore

	communities CommunityService
	memberships MembershipService
	moderation  ModerationService
	posts       PostService
}

func newTestEnv() *testEnv {
	store := newMemStore()
	bans := memBanStore{store}
	mods := memModeratorStore{store}
	postStore := memPostStore{store}
	users := memUserStore{store}
	cache := noopCache{}
	authz := auth.NewAuthorizationService(store, mods, bans)
	logger := zerolog.Nop()

	return &testEnv{
		store:       store,
		bans:        bans,
		moderators:  mods,
		postStore:   postStore,
		communities: NewCommunityService(store, store, mods, bans, postStore, users, cache, authz, logger),
		memberships: NewMembershipService(store, store, mods, bans, cache, authz, logger),
		moderation:  NewModerationService(store, store, mods, bans, users, cache, authz, logger),
		posts:       NewPostService(store, store, bans, postStore, cache, authz, logger),
	}
}

func (e *testEnv) createCommunity(t *testing.T, owner *models.User, name string) *dto.CommunityResponse {
	t.Helper()
	resp, err := e.communities.CreateCommunity(context.Background(), &dto.CreateCommunityRequest{
		Name:        name,
		Prefix:      "c/",
		DisplayName: name,
	}, owner.ID)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) join(t *testing.T, communityID int64, user *models.User) {
	t.Helper()
	_, err := e.memberships.JoinCommunity(context.Background(), communityID, user.ID)
	require.NoError(t, err)
}

func (e *testEnv) createTextPost(t *testing.T, communityID int64, author *models.User, title string) *dto.PostResponse {
	t.Helper()
	resp, err := e.posts.CreatePost(context.Background(), communityID, &dto.CreatePostRequest{
		Title: title,
		Type:  "text",
	}, author.ID)
	require.NoError(t, err)
	return resp
}

func boolPtr(b bool) *bool           { return &b }
func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }
