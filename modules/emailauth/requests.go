package emailauth

import (
	"encoding/json"
	"errors"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest keeps the whole JSON object in Fields so custom signup
// fields reach the SignupFieldsExtractor untouched.
type SignupRequest struct {
	Email    string
	Password string
	Fields   map[string]any
}

func (r *SignupRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("signup body must be a JSON object")
	}

	var ok bool
	if v, exists := raw["email"]; exists && v != nil {
		if r.Email, ok = v.(string); !ok {
			return errors.New("email must be a string")
		}
	}
	if v, exists := raw["password"]; exists && v != nil {
		if r.Password, ok = v.(string); !ok {
			return errors.New("password must be a string")
		}
	}
	r.Fields = raw
	return nil
}

type RequestPasswordResetRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

// SuccessResponse is the body of every successful flow except login.
type SuccessResponse struct {
	Success bool `json:"success"`
}
