package seed

import (
	"context"
	"errors"
	"fmt"

	"pratocheio/internal/store"
	"pratocheio/pkg/types"

	"golang.org/x/crypto/bcrypt"
)

// Every seeded account shares this password so manual testing against a
// development database needs no lookup table.
const seedPassword = "prato-cheio-dev"

type fakeUserSeed struct {
	Nome             string
	Email            string
	Tipo             types.UserType
	BairroOuDistrito string
	Cidade           string
}

var fakeUsers = []fakeUserSeed{
	{Nome: "Maria Aparecida Souza", Email: "maria.souza+seed1@example.com", Tipo: types.UserTypePessoaFisica, BairroOuDistrito: "Centro", Cidade: "São Paulo"},
	{Nome: "João Pedro Lima", Email: "joao.lima+seed2@example.com", Tipo: types.UserTypePessoaFisica, BairroOuDistrito: "Boa Viagem", Cidade: "Recife"},
	{Nome: "Instituto Mesa Farta", Email: "contato+seed3@mesafarta.example.com", Tipo: types.UserTypeONG, BairroOuDistrito: "Savassi", Cidade: "Belo Horizonte"},
	{Nome: "Padaria Pão Dourado", Email: "padaria+seed4@paodourado.example.com", Tipo: types.UserTypePessoaJuridica, BairroOuDistrito: "Moinhos de Vento", Cidade: "Porto Alegre"},
	{Nome: "Ana Clara Ferreira", Email: "ana.ferreira+seed5@example.com", Tipo: types.UserTypePessoaFisica, BairroOuDistrito: "Meireles", Cidade: "Fortaleza"},
}

// Users ensures every fake account exists, keyed by email, and returns
// the stored rows (existing or freshly created).
func Users(ctx context.Context, userRepo *store.UserRepository) ([]*types.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash seed password: %w", err)
	}

	users := make([]*types.User, 0, len(fakeUsers))

	for _, fake := range fakeUsers {
		existing, err := userRepo.UserByEmail(ctx, fake.Email)
		if err == nil {
			users = append(users, existing)
			continue
		}
		if !errors.Is(err, types.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to fetch seed user %s: %w", fake.Email, err)
		}

		user := &types.User{
			Nome:             fake.Nome,
			Email:            fake.Email,
			SenhaHash:        string(hash),
			Tipo:             string(fake.Tipo),
			BairroOuDistrito: fake.BairroOuDistrito,
			Cidade:           fake.Cidade,
		}

		if err := userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create seed user %s: %w", fake.Email, err)
		}

		users = append(users, user)
	}

	return users, nil
}
