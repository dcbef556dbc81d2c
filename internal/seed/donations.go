package seed

import (
	"context"
	"fmt"
	"time"

	"pratocheio/internal/store"
	"pratocheio/pkg/types"
)

type fakeDonationSeed struct {
	NomeAlimento     string
	ValidadeDays     int
	Descricao        string
	BairroOuDistrito string
	HorarioPreferido string
}

var fakeDonations = []fakeDonationSeed{
	{NomeAlimento: "Arroz tipo 1 (5kg)", ValidadeDays: 180, Descricao: "Pacote lacrado", BairroOuDistrito: "Centro", HorarioPreferido: "Dias úteis após as 18h"},
	{NomeAlimento: "Feijão carioca (2kg)", ValidadeDays: 120, Descricao: "", BairroOuDistrito: "Boa Viagem", HorarioPreferido: ""},
	{NomeAlimento: "Leite integral (12 caixas)", ValidadeDays: 45, Descricao: "Caixa fechada, validade longa", BairroOuDistrito: "Savassi", HorarioPreferido: "Sábado de manhã"},
	{NomeAlimento: "Pães do dia", ValidadeDays: 1, Descricao: "Retirar no mesmo dia", BairroOuDistrito: "Moinhos de Vento", HorarioPreferido: "Após as 19h"},
	{NomeAlimento: "Frutas variadas", ValidadeDays: 3, Descricao: "Cesta com bananas, maçãs e laranjas", BairroOuDistrito: "Meireles", HorarioPreferido: ""},
}

// Donations gives each seeded user one sample donation, skipping users
// that already own rows so reruns stay idempotent. Seeded donations
// carry no images.
func Donations(ctx context.Context, donationRepo *store.DonationRepository, users []*types.User) ([]*types.Donation, error) {
	donations := make([]*types.Donation, 0, len(users))

	for i, user := range users {
		existing, err := donationRepo.DonationsByUser(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch donations for seed user %s: %w", user.ID, err)
		}
		if len(existing) > 0 {
			donations = append(donations, existing...)
			continue
		}

		fake := fakeDonations[i%len(fakeDonations)]

		donation := &types.Donation{
			NomeAlimento:     fake.NomeAlimento,
			Validade:         time.Now().AddDate(0, 0, fake.ValidadeDays),
			Descricao:        fake.Descricao,
			BairroOuDistrito: fake.BairroOuDistrito,
			HorarioPreferido: fake.HorarioPreferido,
			Termos:           "Sim",
			UserID:           user.ID,
			ImagensURLs:      "",
		}

		if err := donationRepo.Create(ctx, donation); err != nil {
			return nil, fmt.Errorf("failed to create seed donation for user %s: %w", user.ID, err)
		}

		donations = append(donations, donation)
	}

	return donations, nil
}
