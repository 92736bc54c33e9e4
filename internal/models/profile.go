package models

// AnonymousName is shown for owners without a profile
const AnonymousName = "Anonymous"

// Profile is a user's public display profile
type Profile struct {
	UserID      string `json:"user_id" bson:"user_id"`
	DisplayName string `json:"display_name" bson:"display_name"`
	AvatarRef   string `json:"avatar_ref,omitempty" bson:"avatar_ref,omitempty"`
	Bio         string `json:"bio,omitempty" bson:"bio,omitempty"`
}

// AnonymousProfile is the stand-in for an owner whose profile is missing
func AnonymousProfile(userID string) Profile {
	return Profile{UserID: userID, DisplayName: AnonymousName}
}

// UpdateProfileInput defines the request body for editing one's own profile
type UpdateProfileInput struct {
	DisplayName string `json:"display_name" validate:"required,max=80"`
	AvatarRef   string `json:"avatar_ref,omitempty" validate:"omitempty,max=2048"`
	Bio         string `json:"bio,omitempty" validate:"max=500"`
}
