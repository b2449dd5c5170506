// Package payment manages the fees charged on donations.
package payment

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/sadaka/core"
)

var (
	ErrNotFound = core.NewNotFoundError("payment settings")

	errAmountTooLow  = errors.New("amount is below the minimum donation")
	errAmountTooHigh = errors.New("amount is above the maximum donation")
	errFeesTooHigh   = errors.New("fees exceed the donated amount")
)

// FeeSettings are the platform wide donation fees. Amounts are in minor units (eg. cents).
type FeeSettings struct {
	PlatformFeePercent   float64   `json:"platform_fee_percent" db:"platform_fee_percent" validate:"gte=0,lte=100"`
	ProcessingFeePercent float64   `json:"processing_fee_percent" db:"processing_fee_percent" validate:"gte=0,lte=100"`
	FixedFee             int64     `json:"fixed_fee" db:"fixed_fee" validate:"gte=0"`
	Currency             string    `json:"currency" db:"currency" validate:"required,currency"`
	MinDonation          int64     `json:"min_donation" db:"min_donation" validate:"gte=0"`
	MaxDonation          int64     `json:"max_donation" db:"max_donation" validate:"gte=0"` // 0: unlimited
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
	UpdatedBy            string    `json:"updated_by" db:"updated_by"`
}

// DefaultFeeSettings are used until the settings are saved for the first time.
func DefaultFeeSettings() FeeSettings {
	return FeeSettings{
		PlatformFeePercent:   5,
		ProcessingFeePercent: 2.9,
		FixedFee:             30,
		Currency:             "USD",
		MinDonation:          100,
	}
}

func (fs *FeeSettings) clean() {
	fs.Currency = strings.ToUpper(core.CleanString(fs.Currency))
}

type FeeSettingsPatch struct {
	PlatformFeePercent   *float64 `json:"platform_fee_percent"`
	ProcessingFeePercent *float64 `json:"processing_fee_percent"`
	FixedFee             *int64   `json:"fixed_fee"`
	Currency             *string  `json:"currency"`
	MinDonation          *int64   `json:"min_donation"`
	MaxDonation          *int64   `json:"max_donation"`
}

// Quote is the fee breakdown of a donation.
type Quote struct {
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	PlatformFee   int64  `json:"platform_fee"`
	ProcessingFee int64  `json:"processing_fee"`
	FixedFee      int64  `json:"fixed_fee"`
	TotalFees     int64  `json:"total_fees"`
	Net           int64  `json:"net"`
}

type Repository interface {
	// GetFeeSettings returns ErrNotFound when the settings were never saved.
	GetFeeSettings(ctx context.Context) (FeeSettings, error)
	SaveFeeSettings(ctx context.Context, fs FeeSettings) (FeeSettings, error)
}

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Get(ctx context.Context) (FeeSettings, error) {
	fs, err := svc.repo.GetFeeSettings(ctx)
	if err != nil {
		if core.IsNotFound(err) {
			return DefaultFeeSettings(), nil
		}
		return FeeSettings{}, errors.Wrap(err, "getting fee settings")
	}
	return fs, nil
}

func (svc *Service) Put(ctx context.Context, fs FeeSettings, editor string) (FeeSettings, error) {
	return svc.save(ctx, fs, editor)
}

func (svc *Service) Patch(ctx context.Context, patch FeeSettingsPatch, editor string) (FeeSettings, error) {
	fs, err := svc.Get(ctx)
	if err != nil {
		return FeeSettings{}, err
	}
	if err = copier.CopyWithOption(&fs, &patch, copier.Option{IgnoreEmpty: true}); err != nil {
		return FeeSettings{}, errors.Wrap(err, "applying patch")
	}
	return svc.save(ctx, fs, editor)
}

func (svc *Service) save(ctx context.Context, fs FeeSettings, editor string) (FeeSettings, error) {
	fs.clean()
	if err := svc.validate.Struct(fs); err != nil {
		return FeeSettings{}, err
	}
	if fs.MaxDonation > 0 && fs.MaxDonation < fs.MinDonation {
		return FeeSettings{}, core.NewValidationError(nil, core.FieldError{
			Field: "max_donation",
			Error: "max_donation must be greater than or equal to min_donation",
		})
	}
	fs.UpdatedAt = time.Now().UTC()
	fs.UpdatedBy = editor
	return svc.repo.SaveFeeSettings(ctx, fs)
}

// Quote computes the fees of a donation of amount with the current settings.
func (svc *Service) Quote(ctx context.Context, amount int64) (Quote, error) {
	fs, err := svc.Get(ctx)
	if err != nil {
		return Quote{}, err
	}
	return fs.Quote(amount)
}

func (fs FeeSettings) Quote(amount int64) (Quote, error) {
	amountErr := func(err error) error {
		return core.NewValidationError(err, core.FieldError{Field: "amount", Error: err.Error()})
	}
	if amount <= 0 || amount < fs.MinDonation {
		return Quote{}, amountErr(errAmountTooLow)
	}
	if fs.MaxDonation > 0 && amount > fs.MaxDonation {
		return Quote{}, amountErr(errAmountTooHigh)
	}

	q := Quote{
		Amount:        amount,
		Currency:      fs.Currency,
		PlatformFee:   percentOf(amount, fs.PlatformFeePercent),
		ProcessingFee: percentOf(amount, fs.ProcessingFeePercent),
		FixedFee:      fs.FixedFee,
	}
	q.TotalFees = q.PlatformFee + q.ProcessingFee + q.FixedFee
	q.Net = amount - q.TotalFees
	if q.Net < 0 {
		return Quote{}, amountErr(errFeesTooHigh)
	}
	return q, nil
}

// percentOf rounds half away from zero to the minor unit.
// percent is taken at its shortest decimal representation, so 1.15 is exactly 1.15.
func percentOf(amount int64, percent float64) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromFloat(percent)).
		Shift(-2).
		Round(0).
		IntPart()
}
