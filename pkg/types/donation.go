package types

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for validade. The column is a SQL DATE,
// so round-trips are lossless at day granularity.
const DateLayout = "2006-01-02"

func ParseValidade(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse validade %q: %w", s, err)
	}
	return t, nil
}

type Donation struct {
	ID               string    `db:"id"`
	NomeAlimento     string    `db:"nome_alimento"`
	Validade         time.Time `db:"validade"`
	Descricao        string    `db:"descricao"`
	BairroOuDistrito string    `db:"bairro_ou_distrito"`
	HorarioPreferido string    `db:"horario_preferido"`
	Termos           string    `db:"termos"`
	UserID           string    `db:"user_id"`

	// Comma-joined stored filenames; empty list persists as "".
	ImagensURLs string `db:"imagens_urls"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// DonationUpdate carries the subset of columns a donation update may
// touch. Ownership (user_id) is immutable after creation and has no
// field here. Imagens holds the reconciled comma-joined filename list.
type DonationUpdate struct {
	NomeAlimento     *string
	Validade         *time.Time
	Descricao        *string
	BairroOuDistrito *string
	HorarioPreferido *string
	Termos           *string
	Imagens          *string
}

// DonationDTO is the public shape of a donation; imagens_urls is the
// expanded list of absolute URLs, not the stored filename string.
type DonationDTO struct {
	ID               string   `json:"id"`
	NomeAlimento     string   `json:"nome_alimento"`
	Validade         string   `json:"validade"`
	Descricao        string   `json:"descricao,omitempty"`
	BairroOuDistrito string   `json:"bairro_ou_distrito"`
	HorarioPreferido string   `json:"horario_preferido,omitempty"`
	Termos           string   `json:"termos"`
	UserID           string   `json:"user_id"`
	ImagensURLs      []string `json:"imagens_urls"`
}

func (d *Donation) DTO(imageURLs []string) DonationDTO {
	if imageURLs == nil {
		imageURLs = []string{}
	}
	return DonationDTO{
		ID:               d.ID,
		NomeAlimento:     d.NomeAlimento,
		Validade:         d.Validade.Format(DateLayout),
		Descricao:        d.Descricao,
		BairroOuDistrito: d.BairroOuDistrito,
		HorarioPreferido: d.HorarioPreferido,
		Termos:           d.Termos,
		UserID:           d.UserID,
		ImagensURLs:      imageURLs,
	}
}
