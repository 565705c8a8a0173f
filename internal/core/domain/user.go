package domain

import "time"

// Identity is the authenticated principal. It never carries the secret.
type Identity struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Role        Role      `json:"role"`
	Avatar      string    `json:"avatar,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DisplayName joins the name parts, falling back to the email.
func (i Identity) DisplayName() string {
	switch {
	case i.FirstName != "" && i.LastName != "":
		return i.FirstName + " " + i.LastName
	case i.FirstName != "":
		return i.FirstName
	case i.LastName != "":
		return i.LastName
	default:
		return i.Email
	}
}

// CredentialRecord backs login: an Identity plus the hash of its secret.
type CredentialRecord struct {
	Identity
	SecretHash string `json:"-"`
}

// ProfileUpdate carries the fields a profile update may change. Nil fields are
// left untouched. ID, email, role and creation time are not updatable.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	Avatar      *string
	PhoneNumber *string
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Avatar == nil && u.PhoneNumber == nil
}

// Apply returns a copy of id with the update merged in.
func (u ProfileUpdate) Apply(id Identity) Identity {
	if u.FirstName != nil {
		id.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		id.LastName = *u.LastName
	}
	if u.Avatar != nil {
		id.Avatar = *u.Avatar
	}
	if u.PhoneNumber != nil {
		id.PhoneNumber = *u.PhoneNumber
	}
	return id
}
