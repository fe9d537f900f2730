package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBanInEffect(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name string
		ban  *CommunityBan
		want bool
	}{
		{"nil ban", nil, false},
		{"lifted", &CommunityBan{IsActive: false, IsPermanent: true}, false},
		{"permanent", &CommunityBan{IsActive: true, IsPermanent: true}, true},
		{"timed, in window", &CommunityBan{IsActive: true, ExpiresAt: &future}, true},
		{"timed, elapsed", &CommunityBan{IsActive: true, ExpiresAt: &past}, false},
		{"active without expiry or permanence", &CommunityBan{IsActive: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ban.InEffect(now))
		})
	}
}
