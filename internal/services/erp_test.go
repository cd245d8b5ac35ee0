package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfaria/vendaszap-backend/internal/models"
	"github.com/rfaria/vendaszap-backend/internal/storage"
)

// erpFixture spins up a fake ERP Web API and a store pointing at it
type erpFixture struct {
	server        *httptest.Server
	service       *ERPService
	tokenRequests atomic.Int32
	dataRequests  atomic.Int32

	expiresIn      int
	rejectData     bool // always answer 401 on data endpoints
	reject401Once  bool // answer 401 on the first data request only
	dataStatusCode int
	tableJSON      string
	lastDataQuery  string
}

func newERPFixture(t *testing.T) *erpFixture {
	t.Helper()

	f := &erpFixture{
		expiresIn:      3600,
		dataStatusCode: http.StatusOK,
		tableJSON:      `[]`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/WebApi/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenRequests.Add(1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "apiuser", r.PostForm.Get("username"))
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"bearer","expires_in":%d}`,
			f.tokenRequests.Load(), f.expiresIn)
	})
	mux.HandleFunc("/WebApi/GetDados/", func(w http.ResponseWriter, r *http.Request) {
		n := f.dataRequests.Add(1)
		f.lastDataQuery = r.URL.RawQuery

		if f.rejectData || (f.reject401Once && n == 1) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if f.dataStatusCode != http.StatusOK {
			w.WriteHeader(f.dataStatusCode)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"DataSet":{"Table":%s},"Query":"select"}`, f.tableJSON)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	store := storage.NewMemoryStore()
	_, err := store.UpsertSettings(&models.Settings{
		Username:  "apiuser",
		Password:  "secret",
		Company:   "DEMO",
		URL:       f.server.URL,
		Instance:  "Default",
		Line:      "Evolution",
		GrantType: "password",
	})
	require.NoError(t, err)

	f.service = NewERPService(store)
	return f
}

func TestGetTokenCachesWithinExpiry(t *testing.T) {
	f := newERPFixture(t)
	ctx := context.Background()

	first, err := f.service.GetToken(ctx)
	require.NoError(t, err)
	second, err := f.service.GetToken(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), f.tokenRequests.Load(), "second call must hit the cache")
}

func TestGetTokenRefreshesAfterExpiry(t *testing.T) {
	f := newERPFixture(t)
	// expires_in of 60 leaves zero validity once the safety margin is applied
	f.expiresIn = 60
	ctx := context.Background()

	_, err := f.service.GetToken(ctx)
	require.NoError(t, err)
	_, err = f.service.GetToken(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(2), f.tokenRequests.Load())
}

func TestGetTokenWithoutSettings(t *testing.T) {
	service := NewERPService(storage.NewMemoryStore())

	_, err := service.GetToken(context.Background())
	assert.ErrorIs(t, err, storage.ErrSettingsMissing)
}

func TestCallAPIRetriesOnceOn401(t *testing.T) {
	f := newERPFixture(t)
	f.reject401Once = true
	f.tableJSON = `[{"TipoDoc":"FT","Serie":"A","NumDoc":"1","TotalMerc":"10.00"}]`

	rows, err := f.service.GetVendasHoje(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "FT", rows[0].TipoDoc)
	assert.InDelta(t, 10.0, rows[0].TotalMerc.Float64(), 0.001)
	assert.Equal(t, int32(2), f.dataRequests.Load(), "exactly one retry")
	assert.Equal(t, int32(2), f.tokenRequests.Load(), "retry fetches a fresh token")
}

func TestCallAPIGivesUpAfterSecond401(t *testing.T) {
	f := newERPFixture(t)
	f.rejectData = true

	_, err := f.service.GetVendasHoje(context.Background(), "")

	assert.ErrorIs(t, err, ErrUpstreamAuth)
	assert.Equal(t, int32(2), f.dataRequests.Load(), "no third attempt")
}

func TestCallAPIUpstreamError(t *testing.T) {
	f := newERPFixture(t)
	f.dataStatusCode = http.StatusInternalServerError

	_, err := f.service.GetVendasHoje(context.Background(), "")

	var upstreamErr *UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusInternalServerError, upstreamErr.Status)
	assert.Equal(t, int32(1), f.dataRequests.Load(), "non-auth failures are not retried")
}

func TestSerieFilterIsQueryEscaped(t *testing.T) {
	f := newERPFixture(t)

	_, err := f.service.GetTop5VendasSemana(context.Background(), "A 1")
	require.NoError(t, err)

	assert.Equal(t, "serie=A+1", f.lastDataQuery)
}

func TestGetSeriesVendas(t *testing.T) {
	f := newERPFixture(t)
	f.tableJSON = `[{"serie":"LX","Descricao":"Lisboa"},{"serie":"PT","Descricao":"Porto"}]`

	series, err := f.service.GetSeriesVendas(context.Background())
	require.NoError(t, err)

	require.Len(t, series, 2)
	assert.Equal(t, "LX", series[0].Serie)
	assert.Equal(t, "Porto", series[1].Descricao)
}

func TestEmptyResultSetIsNotAnError(t *testing.T) {
	f := newERPFixture(t)

	rows, err := f.service.GetVendasMes(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
