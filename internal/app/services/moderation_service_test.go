package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commune-social/commune/internal/app/models/dto"
	"github.com/commune-social/commune/internal/pkg/apperrors"
)

func TestBanUserOwnerBlocked(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	ctx := context.Background()

	created := env.createCommunity(t, owner, "golang")

	err := env.moderation.BanUser(ctx, created.ID, &dto.BanUserRequest{
		UserID:      owner.ID,
		IsPermanent: true,
	}, owner.ID)
	require.ErrorIs(t, err, apperrors.ErrCannotBanOwner)
}

func TestBanUserRequiresCapability(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	member := env.store.addUser("bob")
	target := env.store.addUser("carol")
	ctx := context.Background()

	created := env.createCommunity(t, owner, "golang")
	env.join(t, created.ID, member)
	env.join(t, created.ID, target)

	err := env.moderation.BanUser(ctx, created.ID, &dto.BanUserRequest{
		UserID:      target.ID,
		IsPermanent: true,
	}, member.ID)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	// Granting can_ban alone is enough to ban.
	_, err = env.moderation.AddModerator(ctx, created.ID, &dto.AddModeratorRequest{
		UserID: member.ID,
		CanBan: true,
	}, owner.ID)
	require.NoError(t, err)

	err = env.moderation.BanUser(ctx, created.ID, &dto.BanUserRequest{
		UserID:      target.ID,
		IsPermanent: true,
	}, member.ID)
	require.NoError(t, err)
}

func TestBanUserUnknownTarget(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	ctx := context.Background()

	created := env.createCommunity(t, owner, "golang")

	err := env.moderation.BanUser(ctx, created.ID, &dto.BanUserRequest{
		UserID:      9999,
		IsPermanent: true,
	}, owner.ID)
	require.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestBanUserOverwritesExistingBan(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	target := env.store.addUser("bob")
	ctx := context.Background()

	created := env.createCommunity(t, owner, "golang")
	env.join(t, created.ID, target)

	err := env.moderation.BanUser(ctx, created.ID, &dto.BanUserRequest{
		UserID:    target.ID,
		Reason:    strPtr("first offense"),
		ExpiresAt: timePtr(time.Now().Add(time.Hour)),
	}, owner.ID)
	require.NoError(t, err)

	// Re-banning the same user escalates the existing row in place.
	err = env.moderation.BanUser(ctx, created.ID, &dto.BanUserRequest{
		UserID:      target.ID,
		Reason:      strPtr("repeat offense"),
		IsPermanent: true,
	}, owner.ID)
	require.NoError(t, err)

	ban := env.store.getBan(created.ID, target.ID)
	require.NotNil(t, ban)
	assert.Equal(t, "repeat offense", ban.Reason)
	assert.True(t, ban.IsPermanent)
	assert.True(t, ban.InEffect(time.Now()))
}

func TestBanUserForcesMembershipRemoval(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	target := env.store.addUser("bob")
	ctx := context.Background()

	created := env.createCommunity(t, owner, "golang")
	env.join(t, created.ID, target)

	before, err := env.communities.GetCommunity(ctx, "golang", 0)
	require.NoError(t, err)
	require.Equal(t, int64(2), before.MembersCount)

	require.NoError(t, env.moderation.BanUser(ctx, created.ID, &dto.BanUserRequest{
		UserID:      target.ID,
		IsPermanent: true,
	}, owner.ID))

	active, err := env.store.IsActiveMember(ctx, created.ID, target.ID)
	require.NoError(t, err)
	assert.False(t, active)

	after, err := env.communities.GetCommunity(ctx, "golang", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), after.MembersCount)
}

func TestUnbanUserIdempotent(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	target := env.store.addUser("bob")
	ctx := context.Background()

	created := env.createCommunity(t, owner, "golang")
	env.join(t, created.ID, target)

	require.NoError(t, env.moderation.BanUser(ctx, created.ID, &dto.BanUserRequest{
		UserID:      target.ID,
		IsPermanent: true,
	}, owner.ID))

	require.NoError(t, env.moderation.UnbanUser(ctx, created.ID, target.ID, owner.ID))
	require.NoError(t, env.moderation.UnbanUser(ctx, created.ID, target.ID, owner.ID), "lifting twice is a no-op")
	require.NoError(t, env.moderation.UnbanUser(ctx, created.ID, 9999, owner.ID), "unbanning a user with no ban is a no-op")
}

func TestAddModeratorRequiresActiveMembership(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	stranger := env.store.addUser("bob")
	ctx := context.Background()

	created := env.createCommunity(t, owner, "golang")

	_, err := env.moderation.AddModerator(ctx, created.ID, &dto.AddModeratorRequest{
		UserID:      stranger.ID,
		CanModerate: true,
	}, owner.ID)
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestAddModeratorRequiresInviteCapability(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	banner := env.store.addUser("bob")
	target := env.store.addUser("carol")
	ctx := context.Background()

	created := env.createCommunity(t, owner, "golang")
	env.join(t, created.ID, banner)
	env.join(t, created.ID, target)

	// can_ban does not imply roster management.
	_, err := env.moderation.AddModerator(ctx, created.ID, &dto.AddModeratorRequest{
		UserID: banner.ID,
		CanBan: true,
	}, owner.ID)
	require.NoError(t, err)

	_, err = env.moderation.AddModerator(ctx, created.ID, &dto.AddModeratorRequest{
		UserID:      target.ID,
		CanModerate: true,
	}, banner.ID)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestAddModeratorRegrantOverwritesFlags(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	mod := env.store.addUser("bob")
	ctx := context.Background()

	created := env.createCommunity(t, owner, "golang")
	env.join(t, created.ID, mod)

	first, err := env.moderation.AddModerator(ctx, created.ID, &dto.AddModeratorRequest{
		UserID:      mod.ID,
		CanModerate: true,
		CanBan:      true,
	}, owner.ID)
	require.NoError(t, err)

	second, err := env.moderation.AddModerator(ctx, created.ID, &dto.AddModeratorRequest{
		UserID:    mod.ID,
		CanInvite: true,
	}, owner.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "re-granting reuses the grant row")
	assert.False(t, second.CanModerate, "a re-grant replaces the full flag set")
	assert.False(t, second.CanBan)
	assert.True(t, second.CanInvite)
}

func TestUpdateModeratorPartialMerge(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	mod := env.store.addUser("bob")
	ctx := context.Background()

	created := env.createCommunity(t, owner, "golang")
	env.join(t, created.ID, mod)

	_, err := env.moderation.AddModerator(ctx, created.ID, &dto.AddModeratorRequest{
		UserID:      mod.ID,
		CanModerate: true,
		CanBan:      true,
	}, owner.ID)
	require.NoError(t, err)

	updated, err := env.moderation.UpdateModerator(ctx, created.ID, mod.ID, &dto.UpdateModeratorRequest{
		CanBan:    boolPtr(false),
		CanInvite: boolPtr(true),
	}, owner.ID)
	require.NoError(t, err)

	assert.True(t, updated.CanModerate, "untouched flags keep their value")
	assert.False(t, updated.CanBan)
	assert.True(t, updated.CanInvite)
	assert.False(t, updated.CanEdit)
}

func TestUpdateModeratorNoGrant(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	member := env.store.addUser("bob")
	ctx := context.Background()

	created := env.createCommunity(t, owner, "golang")
	env.join(t, created.ID, member)

	_, err := env.moderation.UpdateModerator(ctx, created.ID, member.ID, &dto.UpdateModeratorRequest{
		CanBan: boolPtr(true),
	}, owner.ID)
	require.ErrorIs(t, err, apperrors.ErrModeratorNotFound)
}

func TestRemoveModerator(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	mod := env.store.addUser("bob")
	ctx := context.Background()

	created := env.createCommunity(t, owner, "golang")
	env.join(t, created.ID, mod)

	_, err := env.moderation.AddModerator(ctx, created.ID, &dto.AddModeratorRequest{
		UserID:      mod.ID,
		CanModerate: true,
	}, owner.ID)
	require.NoError(t, err)

	require.NoError(t, env.moderation.RemoveModerator(ctx, created.ID, mod.ID, owner.ID))

	err = env.moderation.RemoveModerator(ctx, created.ID, mod.ID, owner.ID)
	require.ErrorIs(t, err, apperrors.ErrModeratorNotFound)

	// The user stays a member after losing the grant.
	active, err := env.store.IsActiveMember(ctx, created.ID, mod.ID)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestGetModeratorsPublic(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	mod := env.store.addUser("bob")
	ctx := context.Background()

	created := env.createCommunity(t, owner, "golang")
	env.join(t, created.ID, mod)

	_, err := env.moderation.AddModerator(ctx, created.ID, &dto.AddModeratorRequest{
		UserID:      mod.ID,
		CanModerate: true,
	}, owner.ID)
	require.NoError(t, err)

	mods, err := env.moderation.GetModerators(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, mod.ID, mods[0].UserID)
	require.NotNil(t, mods[0].User)
	assert.Equal(t, "bob", mods[0].User.Username)
}
