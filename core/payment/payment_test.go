package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/sadaka/core"
)

func TestFeeSettings_Quote(t *testing.T) {
	fs := FeeSettings{
		PlatformFeePercent:   5,
		ProcessingFeePercent: 2.5,
		FixedFee:             30,
		Currency:             "USD",
		MinDonation:          100,
		MaxDonation:          100000,
	}

	tests := []struct {
		name    string
		fs      FeeSettings
		amount  int64
		want    Quote
		wantErr bool
	}{
		{name: "zero", fs: fs, amount: 0, wantErr: true},
		{name: "below min", fs: fs, amount: 99, wantErr: true},
		{name: "above max", fs: fs, amount: 100001, wantErr: true},
		{
			name:   "min",
			fs:     fs,
			amount: 100,
			want:   Quote{Amount: 100, Currency: "USD", PlatformFee: 5, ProcessingFee: 3, FixedFee: 30, TotalFees: 38, Net: 62},
		},
		{
			name:   "round half away from zero",
			fs:     FeeSettings{PlatformFeePercent: 5, Currency: "EUR"},
			amount: 10,
			want:   Quote{Amount: 10, Currency: "EUR", PlatformFee: 1, TotalFees: 1, Net: 9},
		},
		{
			name:   "unlimited max",
			fs:     FeeSettings{PlatformFeePercent: 1, Currency: "EUR"},
			amount: 1000000000,
			want:   Quote{Amount: 1000000000, Currency: "EUR", PlatformFee: 10000000, TotalFees: 10000000, Net: 990000000},
		},
		{name: "fees above amount", fs: FeeSettings{FixedFee: 500, Currency: "USD"}, amount: 300, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fs.Quote(tt.amount)
			if tt.wantErr {
				require.Error(t, err)
				vErr, ok := err.(*core.ValidationError)
				require.True(t, ok, "want a *core.ValidationError")
				assert.Equal(t, "amount", vErr.Fields[0].Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPercentOf(t *testing.T) {
	tests := []struct {
		amount  int64
		percent float64
		want    int64
	}{
		{amount: 100, percent: 2.5, want: 3},
		{amount: 100, percent: 2.4, want: 2},
		{amount: 100, percent: 0, want: 0},
		{amount: 100, percent: 100, want: 100},
		{amount: 3000, percent: 1.15, want: 35},
		{amount: 7000, percent: 1.15, want: 81},
		{amount: 13000, percent: 1.15, want: 150},
		{amount: 5000, percent: 2.9, want: 145},
		{amount: 1500, percent: 2.9, want: 44},
		{amount: 2500, percent: 0.7, want: 18},
		{amount: 1000000000, percent: 3.49, want: 34900000},
	}
	for _, tt := range tests {
		if got := percentOf(tt.amount, tt.percent); got != tt.want {
			t.Errorf("percentOf(%d, %v) = %d, want %d", tt.amount, tt.percent, got, tt.want)
		}
	}
}
