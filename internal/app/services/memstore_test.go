package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/commune-social/commune/internal/app/models"
	"github.com/commune-social/commune/internal/app/repositories"
	"github.com/commune-social/commune/internal/pkg/apperrors"
)

type pairKey struct {
	communityID int64
	userID      int64
}

// memStore is an in-memory implementation of every store interface the
// services consume, used to exercise service semantics without a database.
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	users      map[int64]*models.User
	community  map[int64]*models.Community
	members    map[pairKey]*models.CommunityMember
	bans       map[pairKey]*models.CommunityBan
	moderators map[pairKey]*models.CommunityModerator
	posts      map[int64]*models.CommunityPost
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[int64]*models.User),
		community:  make(map[int64]*models.Community),
		members:    make(map[pairKey]*models.CommunityMember),
		bans:       make(map[pairKey]*models.CommunityBan),
		moderators: make(map[pairKey]*models.CommunityModerator),
		posts:      make(map[int64]*models.CommunityPost),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addUser(username string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{
		ID:        s.id(),
		Username:  username,
		Name:      username,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.users[u.ID] = u
	return u
}

// --- CommunityStore ---

func (s *memStore) Create(ctx context.Context, c *models.Community) (*models.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	c.IsActive = true
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	s.community[c.ID] = c
	return c, nil
}

func (s *memStore) GetByID(ctx context.Context, id int64) (*models.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.community[id]
	if !ok || !c.IsActive {
		return nil, apperrors.ErrCommunityNotFound
	}
	return c, nil
}

func (s *memStore) GetByIdentifier(ctx context.Context, identifier string) (*models.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.community {
		if c.IsActive && (c.Name == identifier || c.Slug == identifier) {
			return c, nil
		}
	}
	return nil, apperrors.ErrCommunityNotFound
}

func (s *memStore) GetAll(ctx context.Context, search, prefix string, isPrivate *bool, sortBy string, page, pageSize int) ([]*models.Community, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*models.Community
	for _, c := range s.community {
		if !c.IsActive {
			continue
		}
		if search != "" && !matchesSearch(c, search) {
			continue
		}
		if prefix != "" && c.Prefix != prefix {
			continue
		}
		if isPrivate != nil && c.IsPrivate != *isPrivate {
			continue
		}
		all = append(all, c)
	}
	switch sortBy {
	case "members":
		sort.Slice(all, func(i, j int) bool { return all[i].MembersCount > all[j].MembersCount })
	case "posts":
		sort.Slice(all, func(i, j int) bool { return all[i].PostsCount > all[j].PostsCount })
	case "name":
		sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	default:
		sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	}
	total := int64(len(all))
	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func matchesSearch(c *models.Community, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(c.Name), needle) ||
		strings.Contains(strings.ToLower(c.DisplayName), needle) {
		return true
	}
	return c.Description != nil && strings.Contains(strings.ToLower(*c.Description), needle)
}

func (s *memStore) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.community {
		if c.IsActive && c.Name == name && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.community[id]
	if !ok || !c.IsActive {
		return apperrors.ErrCommunityNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			c.Name = v.(string)
		case "slug":
			c.Slug = v.(string)
		case "display_name":
			c.DisplayName = v.(string)
		case "description":
			str := v.(string)
			c.Description = &str
		case "rules":
			str := v.(string)
			c.Rules = &str
		case "avatar_url":
			str := v.(string)
			c.AvatarURL = &str
		case "banner_url":
			str := v.(string)
			c.BannerURL = &str
		case "primary_color":
			str := v.(string)
			c.PrimaryColor = &str
		case "is_private":
			c.IsPrivate = v.(bool)
		case "require_approval":
			c.RequireApproval = v.(bool)
		case "allow_images":
			c.AllowImages = v.(bool)
		case "allow_videos":
			c.AllowVideos = v.(bool)
		case "allow_polls":
			c.AllowPolls = v.(bool)
		}
	}
	c.UpdatedAt = time.Now()
	return nil
}

func (s *memStore) SoftDelete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.community[id]
	if !ok || !c.IsActive {
		return apperrors.ErrCommunityNotFound
	}
	c.IsActive = false
	return nil
}

func (s *memStore) RecountMembers(ctx context.Context, communityID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.community[communityID]
	if !ok {
		return nil
	}
	var count int64
	for key, m := range s.members {
		if key.communityID == communityID && m.IsActive {
			count++
		}
	}
	c.MembersCount = count
	return nil
}

func (s *memStore) RecountPosts(ctx context.Context, communityID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.community[communityID]
	if !ok {
		return nil
	}
	var count int64
	for _, p := range s.posts {
		if p.CommunityID == communityID && p.IsActive && p.IsApproved {
			count++
		}
	}
	c.PostsCount = count
	return nil
}

// --- MembershipStore ---

func (s *memStore) GetByCommunityAndUser(ctx context.Context, communityID, userID int64) (*models.CommunityMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[pairKey{communityID, userID}]
	if !ok {
		return nil, nil
	}
	return m, nil
}

func (s *memStore) IsActiveMember(ctx context.Context, communityID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[pairKey{communityID, userID}]
	return ok && m.IsActive, nil
}

func (s *memStore) Upsert(ctx context.Context, communityID, userID int64) (*models.CommunityMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{communityID, userID}
	if m, ok := s.members[key]; ok {
		m.IsActive = true
		m.JoinedAt = time.Now()
		return m, nil
	}
	m := &models.CommunityMember{
		ID:          s.id(),
		CommunityID: communityID,
		UserID:      userID,
		IsActive:    true,
		JoinedAt:    time.Now(),
	}
	s.members[key] = m
	return m, nil
}

func (s *memStore) Deactivate(ctx context.Context, communityID, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[pairKey{communityID, userID}]
	if !ok || !m.IsActive {
		return 0, nil
	}
	m.IsActive = false
	return 1, nil
}

func (s *memStore) ListActiveByCommunity(ctx context.Context, communityID int64, page, pageSize int) ([]*models.CommunityMember, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*models.CommunityMember
	for key, m := range s.members {
		if key.communityID == communityID && m.IsActive {
			m.User = s.users[m.UserID]
			all = append(all, m)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].JoinedAt.After(all[j].JoinedAt) })
	total := int64(len(all))
	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

// --- BanStore ---

func (s *memStore) getBan(communityID, userID int64) *models.CommunityBan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bans[pairKey{communityID, userID}]
}

// BanStore's GetByCommunityAndUser clashes with MembershipStore's, so the
// ban side lives on a thin wrapper over the shared state.
type memBanStore struct{ *memStore }

func (s memBanStore) GetByCommunityAndUser(ctx context.Context, communityID, userID int64) (*models.CommunityBan, error) {
	return s.getBan(communityID, userID), nil
}

func (s memBanStore) ApplyBan(ctx context.Context, b *models.CommunityBan) (*models.CommunityBan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{b.CommunityID, b.UserID}
	if existing, ok := s.bans[key]; ok {
		existing.Reason = b.Reason
		existing.IsPermanent = b.IsPermanent
		existing.ExpiresAt = b.ExpiresAt
		existing.IsActive = true
		existing.BannedBy = b.BannedBy
		existing.UpdatedAt = time.Now()
		*b = *existing
	} else {
		b.ID = s.id()
		b.IsActive = true
		b.CreatedAt = time.Now()
		b.UpdatedAt = time.Now()
		s.bans[key] = b
	}
	if m, ok := s.members[key]; ok {
		m.IsActive = false
	}
	if c, ok := s.community[b.CommunityID]; ok {
		var count int64
		for mk, m := range s.members {
			if mk.communityID == b.CommunityID && m.IsActive {
				count++
			}
		}
		c.MembersCount = count
	}
	return s.bans[key], nil
}

func (s memBanStore) Deactivate(ctx context.Context, communityID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.bans[pairKey{communityID, userID}]; ok {
		b.IsActive = false
	}
	return nil
}

func (s memBanStore) CountInEffect(ctx context.Context, communityID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var count int64
	for key, b := range s.bans {
		if key.communityID == communityID && b.InEffect(now) {
			count++
		}
	}
	return count, nil
}

// --- ModeratorStore ---

type memModeratorStore struct{ *memStore }

func (s memModeratorStore) GetByCommunityAndUser(ctx context.Context, communityID, userID int64) (*models.CommunityModerator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.moderators[pairKey{communityID, userID}]
	if !ok {
		return nil, nil
	}
	return m, nil
}

func (s memModeratorStore) Upsert(ctx context.Context, m *models.CommunityModerator) (*models.CommunityModerator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{m.CommunityID, m.UserID}
	if existing, ok := s.moderators[key]; ok {
		existing.ModeratorFlags = m.ModeratorFlags
		existing.UpdatedAt = time.Now()
		*m = *existing
		return existing, nil
	}
	m.ID = s.id()
	m.CreatedAt = time.Now()
	m.UpdatedAt = time.Now()
	s.moderators[key] = m
	return m, nil
}

func (s memModeratorStore) UpdateFlags(ctx context.Context, communityID, userID int64, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.moderators[pairKey{communityID, userID}]
	if !ok {
		return apperrors.ErrModeratorNotFound
	}
	for k, v := range fields {
		switch k {
		case "can_moderate":
			m.CanModerate = v.(bool)
		case "can_ban":
			m.CanBan = v.(bool)
		case "can_invite":
			m.CanInvite = v.(bool)
		case "can_edit":
			m.CanEdit = v.(bool)
		}
	}
	m.UpdatedAt = time.Now()
	return nil
}

func (s memModeratorStore) Delete(ctx context.Context, communityID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{communityID, userID}
	if _, ok := s.moderators[key]; !ok {
		return apperrors.ErrModeratorNotFound
	}
	delete(s.moderators, key)
	return nil
}

func (s memModeratorStore) DeleteIfExists(ctx context.Context, communityID, userID int64) error {
	err := s.Delete(ctx, communityID, userID)
	if err == apperrors.ErrModeratorNotFound {
		return nil
	}
	return err
}

func (s memModeratorStore) ListByCommunity(ctx context.Context, communityID int64) ([]*models.CommunityModerator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*models.CommunityModerator
	for key, m := range s.moderators {
		if key.communityID == communityID {
			m.User = s.users[m.UserID]
			all = append(all, m)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (s memModeratorStore) CountByCommunity(ctx context.Context, communityID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for key := range s.moderators {
		if key.communityID == communityID {
			count++
		}
	}
	return count, nil
}

// --- PostStore ---

type memPostStore struct{ *memStore }

func (s memPostStore) Create(ctx context.Context, p *models.CommunityPost) (*models.CommunityPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	p.IsActive = true
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	s.posts[p.ID] = p
	return p, nil
}

func (s memPostStore) GetByID(ctx context.Context, id int64) (*models.CommunityPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok || !p.IsActive {
		return nil, apperrors.ErrPostNotFound
	}
	p.Author = s.users[p.AuthorID]
	return p, nil
}

func (s memPostStore) ListByCommunity(ctx context.Context, communityID int64, filter repositories.PostFilter, page, pageSize int) ([]*models.CommunityPost, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*models.CommunityPost
	for _, p := range s.posts {
		if p.CommunityID != communityID || !p.IsActive {
			continue
		}
		switch filter.Status {
		case "pending":
			if p.IsApproved {
				continue
			}
		case "all":
		default:
			if !p.IsApproved {
				continue
			}
		}
		if filter.Type != "" && string(p.Type) != filter.Type {
			continue
		}
		p.Author = s.users[p.AuthorID]
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s memPostStore) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok || !p.IsActive {
		return apperrors.ErrPostNotFound
	}
	for k, v := range fields {
		switch k {
		case "title":
			p.Title = v.(string)
		case "content":
			str := v.(string)
			p.Content = &str
		case "is_pinned":
			p.IsPinned = v.(bool)
		case "is_locked":
			p.IsLocked = v.(bool)
		}
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (s memPostStore) SoftDelete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok || !p.IsActive {
		return apperrors.ErrPostNotFound
	}
	p.IsActive = false
	return nil
}

func (s memPostStore) Approve(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok || !p.IsActive {
		return apperrors.ErrPostNotFound
	}
	p.IsApproved = true
	return nil
}

func (s memPostStore) IncrementVote(ctx context.Context, id int64, direction models.VoteDirection) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok || !p.IsActive {
		return 0, 0, apperrors.ErrPostNotFound
	}
	if direction == models.VoteDown {
		p.Downvotes++
	} else {
		p.Upvotes++
	}
	return p.Upvotes, p.Downvotes, nil
}

func (s memPostStore) CountPending(ctx context.Context, communityID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, p := range s.posts {
		if p.CommunityID == communityID && p.IsActive && !p.IsApproved {
			count++
		}
	}
	return count, nil
}

func (s memPostStore) CountApprovedSince(ctx context.Context, communityID int64, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, p := range s.posts {
		if p.CommunityID == communityID && p.IsActive && p.IsApproved && p.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

// --- UserStore ---

type memUserStore struct{ *memStore }

func (s memUserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || !u.IsActive {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (s memUserStore) FindBasicByIDs(ctx context.Context, ids []int64) (map[int64]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]*models.User)
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

// --- CommunityCache ---

type noopCache struct{}

func (noopCache) Get(ctx context.Context, id int64) *models.Community  { return nil }
func (noopCache) Set(ctx context.Context, community *models.Community) {}
func (noopCache) Invalidate(ctx context.Context, id int64)             {}
