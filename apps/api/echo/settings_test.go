package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/sadaka/core/payment"
	"github.com/trezcool/sadaka/core/user"
	"github.com/trezcool/sadaka/testutil"
)

func Test_settingsApi(t *testing.T) {
	srv, app := setup(t)
	admin := testutil.CreateUser(t, app.UserRepo, "Admin", "admin", "admin@sadaka.test", "", []string{user.RoleAdmin}, true)
	editor := testutil.CreateUser(t, app.UserRepo, "Joel", "joel", "joel@sadaka.test", "", []string{user.RoleEditor}, true)
	adminToken := getToken(t, srv, admin)
	editorToken := getToken(t, srv, editor)

	tests := []httpTest{
		{name: "defaults", path: "/v1/settings/payment", token: adminToken, wantCode: http.StatusOK, wantData: marchallObj(t, payment.DefaultFeeSettings())},
		{name: "editors cannot read", path: "/v1/settings/payment", token: editorToken, wantCode: http.StatusForbidden},
		{
			name: "editors can quote", path: "/v1/settings/payment/quote?amount=10000", token: editorToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, payment.Quote{
				Amount: 10000, Currency: "USD", PlatformFee: 500, ProcessingFee: 290, FixedFee: 30, TotalFees: 820, Net: 9180,
			}),
		},
		{
			name: "bad amount", path: "/v1/settings/payment/quote?amount=ten", token: editorToken,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"amount":"amount must be an integer in minor units"}`),
		},
		{
			name: "below minimum", path: "/v1/public/quote?amount=50",
			wantCode: http.StatusBadRequest, wantData: []byte(`{"amount":"amount is below the minimum donation"}`),
		},
		{
			name: "bad currency", method: http.MethodPatch, path: "/v1/settings/payment", token: adminToken,
			body:     []byte(`{"currency":"dollars"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "max below min", method: http.MethodPatch, path: "/v1/settings/payment", token: adminToken,
			body:     []byte(`{"max_donation":50}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"max_donation":"max_donation must be greater than or equal to min_donation"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, tt.run(t, srv))
		})
	}

	t.Run("patch then quote", func(t *testing.T) {
		tt := httpTest{
			method: http.MethodPatch, path: "/v1/settings/payment", token: adminToken,
			body: []byte(`{"platform_fee_percent":0,"currency":"cdf"}`),
		}
		rec := tt.run(t, srv)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var fs payment.FeeSettings
		unmarshal(t, rec, &fs)
		assert.Equal(t, "CDF", fs.Currency)
		assert.Equal(t, "admin", fs.UpdatedBy)
		assert.Equal(t, 2.9, fs.ProcessingFeePercent)

		rec = httpTest{path: "/v1/public/quote?amount=10000"}.run(t, srv)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var q payment.Quote
		unmarshal(t, rec, &q)
		assert.Equal(t, "CDF", q.Currency)
		assert.Equal(t, int64(320), q.TotalFees)
	})
}
