package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	CommunityRepository  *CommunityRepository
	MembershipRepository *MembershipRepository
	BanRepository        *BanRepository
	ModeratorRepository  *ModeratorRepository
	PostRepository       *PostRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(db),
		CommunityRepository:  NewCommunityRepository(db),
		MembershipRepository: NewMembershipRepository(db),
		BanRepository:        NewBanRepository(db),
		ModeratorRepository:  NewModeratorRepository(db),
		PostRepository:       NewPostRepository(db),
	}
}
