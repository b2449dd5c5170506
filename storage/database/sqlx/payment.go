package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core/payment"
)

type paymentRepository struct {
	db *sqlx.DB
}

var _ payment.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db *sqlx.DB) *paymentRepository {
	return &paymentRepository{db: db}
}

func (repo paymentRepository) GetFeeSettings(ctx context.Context) (payment.FeeSettings, error) {
	var fs payment.FeeSettings
	err := repo.db.GetContext(ctx, &fs, `
		SELECT platform_fee_percent, processing_fee_percent, fixed_fee, currency,
		       min_donation, max_donation, updated_at, updated_by
		FROM payment_settings WHERE id = 1`)
	if err != nil {
		return payment.FeeSettings{}, trapNoRowsErr(err, payment.ErrNotFound, "getting fee settings")
	}
	return fs, nil
}

func (repo paymentRepository) SaveFeeSettings(ctx context.Context, fs payment.FeeSettings) (payment.FeeSettings, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO payment_settings (id, platform_fee_percent, processing_fee_percent, fixed_fee, currency,
		                              min_donation, max_donation, updated_at, updated_by)
		VALUES (1, :platform_fee_percent, :processing_fee_percent, :fixed_fee, :currency,
		        :min_donation, :max_donation, :updated_at, :updated_by)
		ON CONFLICT (id) DO UPDATE SET
			platform_fee_percent = EXCLUDED.platform_fee_percent,
			processing_fee_percent = EXCLUDED.processing_fee_percent,
			fixed_fee = EXCLUDED.fixed_fee,
			currency = EXCLUDED.currency,
			min_donation = EXCLUDED.min_donation,
			max_donation = EXCLUDED.max_donation,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by`, fs)
	if err != nil {
		return payment.FeeSettings{}, errors.Wrap(err, "saving fee settings")
	}
	return fs, nil
}
