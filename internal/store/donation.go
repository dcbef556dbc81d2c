package store

import (
	"context"
	"fmt"
	"time"

	"pratocheio/internal/utils"
	"pratocheio/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const donationTableName = "doacoes"

var donationColumns = utils.StructTagValues(types.Donation{})

type DonationRepository struct {
	pool *pgxpool.Pool
}

func NewDonationRepository(pool *pgxpool.Pool) *DonationRepository {
	return &DonationRepository{pool: pool}
}

func (r *DonationRepository) Donation(ctx context.Context, donationID string) (*types.Donation, error) {
	query, args, err := psql().
		Select(donationColumns...).
		From(donationTableName).
		Where(sq.Eq{"id": donationID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donation query: %w", err)
	}

	var donation types.Donation
	err = pgxscan.Get(ctx, r.pool, &donation, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDonationNotFound
		}
		return nil, fmt.Errorf("failed to fetch donation: %w", err)
	}

	return &donation, nil
}

func (r *DonationRepository) Donations(ctx context.Context) ([]*types.Donation, error) {
	query, args, err := psql().
		Select(donationColumns...).
		From(donationTableName).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donations query: %w", err)
	}

	var donations = make([]*types.Donation, 0)
	err = pgxscan.Select(ctx, r.pool, &donations, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch donations: %w", err)
	}

	return donations, nil
}

func (r *DonationRepository) DonationsByUser(ctx context.Context, userID string) ([]*types.Donation, error) {
	query, args, err := psql().
		Select(donationColumns...).
		From(donationTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donations-by-user query: %w", err)
	}

	var donations = make([]*types.Donation, 0)
	err = pgxscan.Select(ctx, r.pool, &donations, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch donations for user %s: %w", userID, err)
	}

	return donations, nil
}

// Create inserts the donation under a freshly generated 6-digit ID,
// retrying with a new ID on a primary key collision.
func (r *DonationRepository) Create(ctx context.Context, donation *types.Donation) error {
	now := time.Now()
	donation.CreatedAt = now
	donation.UpdatedAt = now

	for attempt := 0; attempt < createMaxAttempts; attempt++ {
		donation.ID = utils.NumericID()

		query, args, err := psql().
			Insert(donationTableName).
			SetMap(utils.StructToMap(donation)).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate create donation query: %w", err)
		}

		_, err = r.pool.Exec(ctx, query, args...)
		if err == nil {
			return nil
		}
		if isUniqueViolation(err) {
			continue
		}
		return fmt.Errorf("failed to create donation: %w", err)
	}

	return fmt.Errorf("failed to create donation: exhausted %d id attempts", createMaxAttempts)
}

// Update applies the non-nil fields of update to the stored row. The
// column set is fixed here; caller-supplied keys never reach SQL text.
// The boolean reports whether a row matched the id.
func (r *DonationRepository) Update(ctx context.Context, donationID string, update *types.DonationUpdate) (bool, error) {
	setMap := map[string]any{
		"updated_at": time.Now(),
	}
	if update.NomeAlimento != nil {
		setMap["nome_alimento"] = *update.NomeAlimento
	}
	if update.Validade != nil {
		setMap["validade"] = *update.Validade
	}
	if update.Descricao != nil {
		setMap["descricao"] = *update.Descricao
	}
	if update.BairroOuDistrito != nil {
		setMap["bairro_ou_distrito"] = *update.BairroOuDistrito
	}
	if update.HorarioPreferido != nil {
		setMap["horario_preferido"] = *update.HorarioPreferido
	}
	if update.Termos != nil {
		setMap["termos"] = *update.Termos
	}
	if update.Imagens != nil {
		setMap["imagens_urls"] = *update.Imagens
	}

	query, args, err := psql().
		Update(donationTableName).
		SetMap(setMap).
		Where(sq.Eq{"id": donationID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate update donation query for donation %s: %w", donationID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update donation: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *DonationRepository) Delete(ctx context.Context, donationID string) (bool, error) {
	query, args, err := psql().
		Delete(donationTableName).
		Where(sq.Eq{"id": donationID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate delete donation query for donation %s: %w", donationID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, utils.ErrorWrapOrNil(err, "failed to delete donation")
	}

	return tag.RowsAffected() > 0, nil
}
