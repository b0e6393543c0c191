package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserNormalize_Defaults(t *testing.T) {
	u := &User{ID: "h1", Followers: -3}
	u.Normalize()

	assert.Equal(t, DefaultUsername, u.Username)
	assert.Equal(t, DefaultDisplayName, u.DisplayName)
	assert.Equal(t, UserTypeMember, u.UserType)
	assert.Equal(t, 0, u.Followers)
	assert.NotNil(t, u.Preferences.Sports)
}

func TestUserNormalize_KeepsValues(t *testing.T) {
	u := &User{ID: "h1", Username: "sharp", DisplayName: "Sharp Sam", Followers: 12}
	u.Normalize()

	assert.Equal(t, "sharp", u.Username)
	assert.Equal(t, "Sharp Sam", u.DisplayName)
	assert.Equal(t, 12, u.Followers)
}

func TestUserQualifiesAsTopRated(t *testing.T) {
	assert.True(t, (&User{IsHandicapperPro: true}).QualifiesAsTopRated())
	assert.True(t, (&User{WinRate: 70}).QualifiesAsTopRated())
	assert.False(t, (&User{WinRate: 69.9}).QualifiesAsTopRated())
}

func TestPickStatusTransitions(t *testing.T) {
	for _, to := range []PickStatus{PickStatusWon, PickStatusLost, PickStatusPush, PickStatusVoid} {
		assert.True(t, CanTransition(PickStatusPending, to), "pending -> %s", to)
		assert.False(t, CanTransition(to, PickStatusPending), "%s -> pending", to)
		assert.False(t, CanTransition(to, PickStatusWon), "%s -> won", to)
	}
	assert.False(t, CanTransition(PickStatusPending, PickStatusPending))
	assert.False(t, CanTransition(PickStatusPending, "graded"))
}

func TestPickNormalize_DerivesResult(t *testing.T) {
	p := &Pick{Status: PickStatusLost}
	p.Normalize()
	assert.Equal(t, PickResultLoss, p.Result)
	assert.True(t, p.HasResult())

	void := &Pick{Status: PickStatusVoid}
	void.Normalize()
	assert.Empty(t, void.Result)
	assert.False(t, void.HasResult())

	empty := &Pick{}
	empty.Normalize()
	assert.Equal(t, PickStatusPending, empty.Status)
	assert.NotNil(t, empty.Tags)
}

func TestRatingDistribution(t *testing.T) {
	var d RatingDistribution
	for _, r := range []int{5, 5, 4, 0, 6, 1} {
		d.Add(r)
	}
	assert.Equal(t, 2, d.Count(5))
	assert.Equal(t, 1, d.Count(4))
	assert.Equal(t, 1, d.Count(1))
	assert.Equal(t, 0, d.Count(6))
	assert.Equal(t, 4, d.Total())
}

func TestSubscriptionDaysRemaining(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := &Subscription{Status: SubscriptionStatusActive, EndDate: now.Add(49 * time.Hour)}

	assert.Equal(t, 3, s.DaysRemaining(now))
	assert.True(t, s.IsActive(now))
	assert.Equal(t, 0, s.DaysRemaining(now.Add(50*time.Hour)))
	assert.False(t, s.IsActive(now.Add(50*time.Hour)))
}

func TestConversationID(t *testing.T) {
	assert.Equal(t, "u1_h1", ConversationID("u1", "h1"))
}
