package models

import (
	"time"
)

// Profile is a platform user keyed by the identity the verifier returns.
type Profile struct {
	UID            string    `gorm:"primaryKey;size:128" json:"uid"`
	Name           string    `gorm:"size:255" json:"name"`
	FirstName      string    `gorm:"size:255" json:"firstName,omitempty"`
	LastName       string    `gorm:"size:255" json:"lastName,omitempty"`
	Email          string    `gorm:"size:255" json:"email,omitempty"`
	PhotoURL       string    `gorm:"size:512" json:"photoURL,omitempty"`
	ProfilePicture string    `gorm:"size:512" json:"profilePicture,omitempty"`
	Bio            string    `gorm:"type:text" json:"bio,omitempty"`
	College        string    `gorm:"size:255" json:"college,omitempty"`
	Branch         string    `gorm:"size:255" json:"branch,omitempty"`
	Year           string    `gorm:"size:50" json:"year,omitempty"`
	City           string    `gorm:"size:255" json:"city,omitempty"`
	Skills         []string  `gorm:"serializer:json" json:"skills,omitempty"`
	Interests      []string  `gorm:"serializer:json" json:"interests,omitempty"`
	Certifications []string  `gorm:"serializer:json" json:"certificationFiles,omitempty"`
	IsOnline       bool      `json:"isOnline"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Profile) TableName() string { return "profiles" }

// PublicProfile is the directory projection returned by GET /users.
type PublicProfile struct {
	UID            string   `json:"uid"`
	FirstName      string   `json:"firstName,omitempty"`
	ProfilePicture string   `json:"profilePicture,omitempty"`
	Bio            string   `json:"bio,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	Interests      []string `json:"interests,omitempty"`
	College        string   `json:"college,omitempty"`
	Year           string   `json:"year,omitempty"`
	Branch         string   `json:"branch,omitempty"`
	City           string   `json:"city,omitempty"`
	IsOnline       bool     `json:"isOnline"`
}

func (p *Profile) Public() PublicProfile {
	return PublicProfile{
		UID:            p.UID,
		FirstName:      p.FirstName,
		ProfilePicture: p.ProfilePicture,
		Bio:            p.Bio,
		Skills:         p.Skills,
		Interests:      p.Interests,
		College:        p.College,
		Year:           p.Year,
		Branch:         p.Branch,
		City:           p.City,
		IsOnline:       p.IsOnline,
	}
}

// ProfileUpdate carries the fields a user may set on their own profile. Nil
// fields are left untouched.
type ProfileUpdate struct {
	Name           *string   `json:"name"`
	FirstName      *string   `json:"firstName"`
	LastName       *string   `json:"lastName"`
	Email          *string   `json:"email"`
	PhotoURL       *string   `json:"photoURL"`
	ProfilePicture *string   `json:"profilePicture"`
	Bio            *string   `json:"bio"`
	College        *string   `json:"college"`
	Branch         *string   `json:"branch"`
	Year           *string   `json:"year"`
	City           *string   `json:"city"`
	Skills         *[]string `json:"skills"`
	Interests      *[]string `json:"interests"`
}

func (u *ProfileUpdate) Apply(p *Profile) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.Name, u.Name)
	set(&p.FirstName, u.FirstName)
	set(&p.LastName, u.LastName)
	set(&p.Email, u.Email)
	set(&p.PhotoURL, u.PhotoURL)
	set(&p.ProfilePicture, u.ProfilePicture)
	set(&p.Bio, u.Bio)
	set(&p.College, u.College)
	set(&p.Branch, u.Branch)
	set(&p.Year, u.Year)
	set(&p.City, u.City)
	if u.Skills != nil {
		p.Skills = *u.Skills
	}
	if u.Interests != nil {
		p.Interests = *u.Interests
	}
}
