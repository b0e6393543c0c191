package models

import (
	"time"
)

type UserType string
type AuthProvider string

const (
	UserTypeMember      UserType = "member"
	UserTypeHandicapper UserType = "handicapper"
	UserTypeAdmin       UserType = "admin"

	AuthProviderGoogle   AuthProvider = "google"
	AuthProviderApple    AuthProvider = "apple"
	AuthProviderFirebase AuthProvider = "firebase"
)

const (
	DefaultUsername    = "unknown"
	DefaultDisplayName = "Unknown Handicapper"

	// TopRatedWinRate is the win rate at which a non-pro handicapper's picks
	// are listed among the top rated.
	TopRatedWinRate = 70.0
)

// User is keyed by the auth provider uid, not an ObjectID.
type User struct {
	ID                 string             `json:"id" bson:"_id"`
	Username           string             `json:"username" bson:"username"`
	DisplayName        string             `json:"display_name" bson:"display_name"`
	Email              string             `json:"email,omitempty" bson:"email,omitempty"`
	AvatarURL          string             `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`
	Bio                string             `json:"bio,omitempty" bson:"bio,omitempty"`
	UserType           UserType           `json:"user_type" bson:"user_type"`
	AuthProvider       AuthProvider       `json:"auth_provider" bson:"auth_provider"`
	IsVerified         bool               `json:"is_verified" bson:"is_verified"`
	IsHandicapperPro   bool               `json:"is_handicapper_pro" bson:"is_handicapper_pro"`
	WinRate            float64            `json:"win_rate" bson:"win_rate"`
	TotalPicks         int                `json:"total_picks" bson:"total_picks"`
	Followers          int                `json:"followers" bson:"followers"`
	AverageRating      float64            `json:"average_rating" bson:"average_rating"`
	TotalReviews       int                `json:"total_reviews" bson:"total_reviews"`
	RatingDistribution RatingDistribution `json:"rating_distribution" bson:"rating_distribution"`
	Preferences        UserPreferences    `json:"preferences" bson:"preferences"`
	LastLoginAt        *time.Time         `json:"last_login_at,omitempty" bson:"last_login_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" bson:"updated_at"`
}

type UserPreferences struct {
	Sports               []string `json:"sports" bson:"sports"`
	BetTypes             []string `json:"bet_types" bson:"bet_types"`
	NotificationsEnabled bool     `json:"notifications_enabled" bson:"notifications_enabled"`
}

// Normalize fills defaults for documents written by older clients that left
// fields out. It runs after every decode.
func (u *User) Normalize() {
	if u.Username == "" {
		u.Username = DefaultUsername
	}
	if u.DisplayName == "" {
		u.DisplayName = DefaultDisplayName
	}
	if u.UserType == "" {
		u.UserType = UserTypeMember
	}
	if u.Followers < 0 {
		u.Followers = 0
	}
	if u.Preferences.Sports == nil {
		u.Preferences.Sports = []string{}
	}
	if u.Preferences.BetTypes == nil {
		u.Preferences.BetTypes = []string{}
	}
}

// QualifiesAsTopRated reports whether the user's picks belong in the top
// rated feed.
func (u *User) QualifiesAsTopRated() bool {
	return u.IsHandicapperPro || u.WinRate >= TopRatedWinRate
}

// DefaultHandicapper is what callers see for an id with no user record.
func DefaultHandicapper(id string) *User {
	u := &User{ID: id}
	u.Normalize()
	return u
}

// PublicProfile is the trimmed view of a user embedded in picks and lists.
type PublicProfile struct {
	ID               string  `json:"id"`
	Username         string  `json:"username"`
	DisplayName      string  `json:"display_name"`
	AvatarURL        string  `json:"avatar_url,omitempty"`
	IsVerified       bool    `json:"is_verified"`
	IsHandicapperPro bool    `json:"is_handicapper_pro"`
	WinRate          float64 `json:"win_rate"`
	TotalPicks       int     `json:"total_picks"`
	Followers        int     `json:"followers"`
	AverageRating    float64 `json:"average_rating"`
	TotalReviews     int     `json:"total_reviews"`
}

func (u *User) ToPublicProfile() *PublicProfile {
	return &PublicProfile{
		ID:               u.ID,
		Username:         u.Username,
		DisplayName:      u.DisplayName,
		AvatarURL:        u.AvatarURL,
		IsVerified:       u.IsVerified,
		IsHandicapperPro: u.IsHandicapperPro,
		WinRate:          u.WinRate,
		TotalPicks:       u.TotalPicks,
		Followers:        u.Followers,
		AverageRating:    u.AverageRating,
		TotalReviews:     u.TotalReviews,
	}
}
