package domain

import (
	"time"
)

type Gender string

const (
	Male   Gender = "Masculino"
	Female Gender = "Feminino"
	Other  Gender = "Outros"
)

// BirthDateLayout is the wire format of birthDate (dd-MM-yyyy).
const BirthDateLayout = "02-01-2006"

type User struct {
	ID        int64
	Name      string
	BirthDate time.Time
	CPF       string
	Nickname  string
	Gender    Gender
	Email     string
	Telephone string
	State     string
	Country   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserInput carries the nine client supplied fields of a new user.
type UserInput struct {
	Name      string `json:"name" validate:"required"`
	BirthDate string `json:"birthDate" validate:"required"`
	CPF       string `json:"cpf" validate:"required"`
	Nickname  string `json:"nickname" validate:"required"`
	Gender    string `json:"gender" validate:"required"`
	Email     string `json:"email" validate:"required"`
	Telephone string `json:"telephone" validate:"required"`
	State     string `json:"state" validate:"required"`
	Country   string `json:"country" validate:"required"`
}

// UserPatch holds the fields of a partial update. Nil means "not supplied".
type UserPatch struct {
	Name      *string `json:"name,omitempty"`
	BirthDate *string `json:"birthDate,omitempty"`
	CPF       *string `json:"cpf,omitempty"`
	Nickname  *string `json:"nickname,omitempty"`
	Gender    *string `json:"gender,omitempty"`
	Email     *string `json:"email,omitempty"`
	Telephone *string `json:"telephone,omitempty"`
	State     *string `json:"state,omitempty"`
	Country   *string `json:"country,omitempty"`
}

// UserChanges maps column names to their new values.
type UserChanges map[string]any

func ParseBirthDate(s string) (time.Time, error) {
	return time.ParseInLocation(BirthDateLayout, s, time.UTC)
}

func FormatBirthDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(BirthDateLayout)
}
