package entity

import (
	coreEntity "github.com/AndyVoronov/ObschiySbor-sub000/core/entity"
)

type Gender string

const (
	GenderUnset  Gender = ""
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderUnset, GenderMale, GenderFemale:
		return true
	}
	return false
}

// User is a platform account. Gender stays unset until the user fills it
// in; gender-filtered events require it.
type User struct {
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	Name         string `json:"name" db:"name"`
	Gender       Gender `json:"gender" db:"gender"`
	IsAdmin      bool   `json:"is_admin" db:"is_admin"`

	coreEntity.BaseEntity
}
