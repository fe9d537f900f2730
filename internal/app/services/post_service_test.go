package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commune-social/commune/internal/app/models/dto"
	"github.com/commune-social/commune/internal/pkg/apperrors"
)

func TestCreatePostApprovedImmediately(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	member := env.store.addUser("bob")
	ctx := context.Background()

	created := env.createCommunity(t, owner, "golang")
	env.join(t, created.ID, member)

	post := env.createTextPost(t, created.ID, member, "hello world")
	assert.True(t, post.IsApproved)

	after, err := env.communities.GetCommunity(ctx, "golang", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), after.PostsCount)
}

func TestCreatePostRequiresMembership(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	stranger := env.store.addUser("bob")
	ctx := context.Background()

	created := env.createCommunity(t, owner, "golang")

	_, err := env.posts.CreatePost(ctx, created.ID, &dto.CreatePostRequest{
		Title: "drive-by",
		Type:  "text",
	}, stranger.ID)
	require.ErrorIs(t, err, apperrors.ErrMembershipRequired)
}

func TestCreatePostBannedMemberBlocked(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	member := env.store.addUser("bob")
	ctx := context.Background()

	created := env.createCommunity(t, owner, "golang")
	env.join(t, created.ID, member)

	require.NoError(t, env.moderation.BanUser(ctx, created.ID, &dto.BanUserRequest{
		UserID:      member.ID,
		IsPermanent: true,
	}, owner.ID))

	_, err := env.posts.CreatePost(ctx, created.ID, &dto.CreatePostRequest{
		Title: "still here",
		Type:  "text",
	}, member.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUserBanned, apperrors.ErrMembershipRequired))
}

func TestCreatePostDisallowedType(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	ctx := context.Background()

	resp, err := env.communities.CreateCommunity(ctx, &dto.CreateCommunityRequest{
		Name:        "text only",
		Prefix:      "c/",
		DisplayName: "Text Only",
		AllowImages: boolPtr(false),
		AllowPolls:  boolPtr(false),
	}, owner.ID)
	require.NoError(t, err)

	_, err = env.posts.CreatePost(ctx, resp.ID, &dto.CreatePostRequest{
		Title:    "a picture",
		Type:     "image",
		ImageURL: strPtr("https://example.com/x.png"),
	}, owner.ID)
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = env.posts.CreatePost(ctx, resp.ID, &dto.CreatePostRequest{
		Title: "a poll",
		Type:  "poll",
	}, owner.ID)
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = env.posts.CreatePost(ctx, resp.ID, &dto.CreatePostRequest{
		Title: "plain text is fine",
		Type:  "text",
	}, owner.ID)
	require.NoError(t, err)
}

func TestRequireApprovalHoldsPosts(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	member := env.store.addUser("bob")
	ctx := context.Background()

	resp, err := env.communities.CreateCommunity(ctx, &dto.CreateCommunityRequest{
		Name:            "moderated",
		Prefix:          "c/",
		DisplayName:     "Moderated",
		RequireApproval: true,
	}, owner.ID)
	require.NoError(t, err)
	env.join(t, resp.ID, member)

	post, err := env.posts.CreatePost(ctx, resp.ID, &dto.CreatePostRequest{
		Title: "awaiting review",
		Type:  "text",
	}, member.ID)
	require.NoError(t, err)
	assert.False(t, post.IsApproved)

	// A pending post does not count toward the community's post counter.
	after, err := env.communities.GetCommunity(ctx, "moderated", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), after.PostsCount)

	// Non-moderators only see approved posts even when asking for pending.
	list, err := env.posts.GetPosts(ctx, resp.ID, &dto.PostQuery{Status: "pending"}, member.ID, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, list.Posts)

	list, err = env.posts.GetPosts(ctx, resp.ID, &dto.PostQuery{Status: "pending"}, owner.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, list.Posts, 1)
	assert.Equal(t, post.ID, list.Posts[0].ID)

	approved, err := env.posts.ApprovePost(ctx, post.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)

	after, err = env.communities.GetCommunity(ctx, "moderated", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), after.PostsCount)
}

func TestApprovePostRequiresModeration(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	member := env.store.addUser("bob")
	ctx := context.Background()

	resp, err := env.communities.CreateCommunity(ctx, &dto.CreateCommunityRequest{
		Name:            "moderated",
		Prefix:          "c/",
		DisplayName:     "Moderated",
		RequireApproval: true,
	}, owner.ID)
	require.NoError(t, err)
	env.join(t, resp.ID, member)

	post, err := env.posts.CreatePost(ctx, resp.ID, &dto.CreatePostRequest{
		Title: "awaiting review",
		Type:  "text",
	}, member.ID)
	require.NoError(t, err)

	_, err = env.posts.ApprovePost(ctx, post.ID, member.ID)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied, "authors cannot approve their own posts")
}

func TestUpdatePostPermissions(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	author := env.store.addUser("bob")
	other := env.store.addUser("carol")
	ctx := context.Background()

	created := env.createCommunity(t, owner, "golang")
	env.join(t, created.ID, author)
	env.join(t, created.ID, other)

	post := env.createTextPost(t, created.ID, author, "original title")

	_, err := env.posts.UpdatePost(ctx, post.ID, &dto.UpdatePostRequest{
		Title: strPtr("vandalized"),
	}, other.ID)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	byAuthor, err := env.posts.UpdatePost(ctx, post.ID, &dto.UpdatePostRequest{
		Title: strPtr("revised title"),
	}, author.ID)
	require.NoError(t, err)
	assert.Equal(t, "revised title", byAuthor.Title)

	// The owner moderates implicitly and may pin.
	byOwner, err := env.posts.UpdatePost(ctx, post.ID, &dto.UpdatePostRequest{
		IsPinned: boolPtr(true),
	}, owner.ID)
	require.NoError(t, err)
	assert.True(t, byOwner.IsPinned)
	assert.Equal(t, "revised title", byOwner.Title)
}

func TestDeletePostRecounts(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	author := env.store.addUser("bob")
	ctx := context.Background()

	created := env.createCommunity(t, owner, "golang")
	env.join(t, created.ID, author)

	post := env.createTextPost(t, created.ID, author, "short lived")

	require.NoError(t, env.posts.DeletePost(ctx, post.ID, author.ID))

	_, err := env.posts.GetPost(ctx, post.ID)
	require.ErrorIs(t, err, apperrors.ErrPostNotFound)

	after, err := env.communities.GetCommunity(ctx, "golang", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), after.PostsCount)
}

func TestVotePostAccumulates(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	voter := env.store.addUser("bob")
	ctx := context.Background()

	created := env.createCommunity(t, owner, "golang")
	env.join(t, created.ID, voter)

	post := env.createTextPost(t, created.ID, owner, "vote on me")

	// Votes are raw tallies: repeat votes by the same user all count.
	first, err := env.posts.VotePost(ctx, post.ID, &dto.VoteRequest{Direction: "up"}, voter.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Upvotes)
	assert.Equal(t, int64(0), first.Downvotes)

	second, err := env.posts.VotePost(ctx, post.ID, &dto.VoteRequest{Direction: "up"}, voter.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Upvotes)

	third, err := env.posts.VotePost(ctx, post.ID, &dto.VoteRequest{Direction: "down"}, voter.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), third.Upvotes)
	assert.Equal(t, int64(1), third.Downvotes)
}

func TestVotePostRequiresMembership(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addUser("alice")
	stranger := env.store.addUser("bob")
	ctx := context.Background()

	created := env.createCommunity(t, owner, "golang")
	post := env.createTextPost(t, created.ID, owner, "vote on me")

	_, err := env.posts.VotePost(ctx, post.ID, &dto.VoteRequest{Direction: "up"}, stranger.ID)
	require.ErrorIs(t, err, apperrors.ErrMembershipRequired)
}
