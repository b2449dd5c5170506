package inmemdb

import (
	"context"

	"github.com/trezcool/sadaka/core/payment"
)

type paymentRepository struct {
	db *DB
}

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) GetFeeSettings(context.Context) (payment.FeeSettings, error) {
	repo.db.paymentMu.RLock()
	defer repo.db.paymentMu.RUnlock()

	if repo.db.payment == nil {
		return payment.FeeSettings{}, payment.ErrNotFound
	}
	return *repo.db.payment, nil
}

func (repo *paymentRepository) SaveFeeSettings(_ context.Context, fs payment.FeeSettings) (payment.FeeSettings, error) {
	repo.db.paymentMu.Lock()
	defer repo.db.paymentMu.Unlock()
	repo.db.payment = &fs
	return fs, nil
}
