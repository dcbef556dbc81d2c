package types

import "time"

type UserType string

const (
	UserTypePessoaFisica   UserType = "Pessoa Física"
	UserTypeONG            UserType = "ONG"
	UserTypePessoaJuridica UserType = "Pessoa Jurídica"
)

func ValidUserType(s string) bool {
	switch UserType(s) {
	case UserTypePessoaFisica, UserTypeONG, UserTypePessoaJuridica:
		return true
	}
	return false
}

type User struct {
	ID               string    `db:"id"`
	Nome             string    `db:"nome"`
	Email            string    `db:"email"`
	SenhaHash        string    `db:"senha_hash"`
	Tipo             string    `db:"tipo"`
	BairroOuDistrito string    `db:"bairro_ou_distrito"`
	Cidade           string    `db:"cidade"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// UserUpdate carries the subset of columns a profile update may touch.
// Nil fields are left as stored.
type UserUpdate struct {
	Nome             *string
	Email            *string
	SenhaHash        *string
	Tipo             *string
	BairroOuDistrito *string
	Cidade           *string
}

// UserDTO is the public shape of a user. The password hash never leaves
// the store layer through this type.
type UserDTO struct {
	ID               string `json:"id"`
	Nome             string `json:"nome"`
	Email            string `json:"email"`
	Tipo             string `json:"tipo"`
	BairroOuDistrito string `json:"bairro_ou_distrito"`
	Cidade           string `json:"cidade"`
}

func (u *User) DTO() UserDTO {
	return UserDTO{
		ID:               u.ID,
		Nome:             u.Nome,
		Email:            u.Email,
		Tipo:             u.Tipo,
		BairroOuDistrito: u.BairroOuDistrito,
		Cidade:           u.Cidade,
	}
}
