package models

// Viewer is the identity behind a request. The zero value is anonymous.
type Viewer struct {
	UserID string
}

// Anonymous is the absent viewer
var Anonymous = Viewer{}

// ViewerOf returns the viewer for userID
func ViewerOf(userID string) Viewer { return Viewer{UserID: userID} }

// Present reports whether the viewer is signed in
func (v Viewer) Present() bool { return v.UserID != "" }

// GenerateInput defines the request body for the code generator
type GenerateInput struct {
	Prompt   string `json:"prompt" validate:"required,max=4000"`
	Language string `json:"language,omitempty" validate:"omitempty,max=32"`
}
