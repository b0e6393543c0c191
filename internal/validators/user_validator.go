package validators

import (
	"strconv"
)

type AuthCodeRequest struct {
	Code string `json:"code" validate:"required,max=4096"`
	// Apple only sends the user's name on first sign-in.
	Name string `json:"name" validate:"max=100"`
}

// IDTokenRequest carries a Firebase ID token minted by the client SDK.
type IDTokenRequest struct {
	IDToken string `json:"id_token" validate:"required,max=8192"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ProfileUpdateRequest struct {
	Username    *string   `json:"username" validate:"omitempty,min=3,max=30,alphanum"`
	DisplayName *string   `json:"display_name" validate:"omitempty,trimmed_min=1,max=60"`
	Bio         *string   `json:"bio" validate:"omitempty,max=500"`
	Sports      *[]string `json:"sports" validate:"omitempty,max=20,dive,trimmed_min=1,max=50"`
	BetTypes    *[]string `json:"bet_types" validate:"omitempty,max=20,dive,trimmed_min=1,max=50"`
}

func ValidateProfileUpdate(req *ProfileUpdateRequest) error {
	errs := ValidateStruct(req)

	if req.Username == nil && req.DisplayName == nil && req.Bio == nil && req.Sports == nil && req.BetTypes == nil {
		errs.Add("request", "Nothing to update")
	}

	return errs.Err()
}

type TokenRegisterRequest struct {
	Token    string `json:"token" validate:"required,max=4096"`
	Platform string `json:"platform" validate:"required,oneof=ios android web"`
	DeviceID string `json:"device_id" validate:"required,max=200"`
}

func ValidateTokenRegister(req *TokenRegisterRequest) error {
	return ValidateStruct(req).Err()
}

type ChatSendRequest struct {
	HandicapperID string `json:"handicapper_id" validate:"required,max=128"`
	// UserID names the other participant when a handicapper replies.
	UserID string `json:"user_id" validate:"max=128"`
	Text   string `json:"text" validate:"trimmed_min=1,trimmed_max=1000"`
}

func ValidateChatSend(req *ChatSendRequest) error {
	return ValidateStruct(req).Err()
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
