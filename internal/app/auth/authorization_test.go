package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commune-social/commune/internal/app/models"
)

type fakeMembershipStore struct{ member *models.CommunityMember }

func (f fakeMembershipStore) GetByCommunityAndUser(ctx context.Context, communityID, userID int64) (*models.CommunityMember, error) {
	return f.member, nil
}

type fakeModeratorStore struct{ grant *models.CommunityModerator }

func (f fakeModeratorStore) GetByCommunityAndUser(ctx context.Context, communityID, userID int64) (*models.CommunityModerator, error) {
	return f.grant, nil
}

type fakeBanStore struct{ ban *models.CommunityBan }

func (f fakeBanStore) GetByCommunityAndUser(ctx context.Context, communityID, userID int64) (*models.CommunityBan, error) {
	return f.ban, nil
}

func newResolver(member *models.CommunityMember, grant *models.CommunityModerator, ban *models.CommunityBan) *AuthorizationService {
	return NewAuthorizationService(
		fakeMembershipStore{member},
		fakeModeratorStore{grant},
		fakeBanStore{ban},
	)
}

func TestResolveCommunityAnonymous(t *testing.T) {
	svc := newResolver(nil, nil, nil)
	community := &models.Community{ID: 1, OwnerID: 10}

	perms, err := svc.ResolveCommunity(context.Background(), community, 0)
	require.NoError(t, err)
	assert.Equal(t, CommunityPermissions{}, perms)
	assert.False(t, perms.CanModerate())
	assert.False(t, perms.CanBan())
	assert.False(t, perms.CanInvite())
	assert.False(t, perms.CanEdit())
}

func TestResolveCommunityOwnerImplicitFlags(t *testing.T) {
	svc := newResolver(&models.CommunityMember{CommunityID: 1, UserID: 10, IsActive: true}, nil, nil)
	community := &models.Community{ID: 1, OwnerID: 10}

	perms, err := svc.ResolveCommunity(context.Background(), community, 10)
	require.NoError(t, err)
	assert.True(t, perms.IsOwner)
	assert.True(t, perms.IsMember)
	assert.Equal(t, models.AllModeratorFlags, perms.Flags)
	assert.True(t, perms.CanModerate())
	assert.True(t, perms.CanBan())
	assert.True(t, perms.CanInvite())
	assert.True(t, perms.CanEdit())
}

func TestResolveCommunityModeratorFlags(t *testing.T) {
	grant := &models.CommunityModerator{
		CommunityID:    1,
		UserID:         20,
		ModeratorFlags: models.ModeratorFlags{CanModerate: true, CanBan: true},
	}
	svc := newResolver(&models.CommunityMember{CommunityID: 1, UserID: 20, IsActive: true}, grant, nil)
	community := &models.Community{ID: 1, OwnerID: 10}

	perms, err := svc.ResolveCommunity(context.Background(), community, 20)
	require.NoError(t, err)
	assert.False(t, perms.IsOwner)
	assert.True(t, perms.IsModerator)
	assert.True(t, perms.CanModerate())
	assert.True(t, perms.CanBan())
	assert.False(t, perms.CanInvite())
	assert.False(t, perms.CanEdit())
}

func TestResolveCommunityInactiveMembership(t *testing.T) {
	svc := newResolver(&models.CommunityMember{CommunityID: 1, UserID: 20, IsActive: false}, nil, nil)
	community := &models.Community{ID: 1, OwnerID: 10}

	perms, err := svc.ResolveCommunity(context.Background(), community, 20)
	require.NoError(t, err)
	assert.False(t, perms.IsMember, "a deactivated membership row does not count")
}

func TestResolveCommunityBans(t *testing.T) {
	community := &models.Community{ID: 1, OwnerID: 10}

	tests := []struct {
		name   string
		ban    *models.CommunityBan
		banned bool
	}{
		{"no ban", nil, false},
		{"permanent", &models.CommunityBan{IsActive: true, IsPermanent: true}, true},
		{"lifted", &models.CommunityBan{IsActive: false, IsPermanent: true}, false},
		{"timed, in window", &models.CommunityBan{IsActive: true, ExpiresAt: timePtr(time.Now().Add(time.Hour))}, true},
		{"timed, elapsed", &models.CommunityBan{IsActive: true, ExpiresAt: timePtr(time.Now().Add(-time.Hour))}, false},
		{"active with no window", &models.CommunityBan{IsActive: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newResolver(nil, nil, tt.ban)
			perms, err := svc.ResolveCommunity(context.Background(), community, 20)
			require.NoError(t, err)
			assert.Equal(t, tt.banned, perms.IsBanned)
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }
