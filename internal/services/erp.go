package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rfaria/vendaszap-backend/internal/models"
	"github.com/rfaria/vendaszap-backend/internal/storage"
)

// ErrUpstreamAuth signals that the ERP rejected our credentials, either
// on the token request itself or on a report call after a token refresh.
var ErrUpstreamAuth = errors.New("erp authentication failed")

// UpstreamError is a non-auth failure from the ERP Web API
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("erp request failed with status %d", e.Status)
}

// tokenResponse is the OAuth-style reply from {url}/WebApi/token
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// apiEnvelope wraps every GetDados result set
type apiEnvelope struct {
	DataSet struct {
		Table json.RawMessage `json:"Table"`
	} `json:"DataSet"`
	Query string `json:"Query"`
}

// ERPService talks to the ERP Web API. It caches the bearer token
// process-wide and refreshes it transparently when the ERP rejects it.
type ERPService struct {
	store  storage.Store
	client *resty.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewERPService creates a new ERP client
func NewERPService(store storage.Store) *ERPService {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")

	return &ERPService{
		store:  store,
		client: client,
	}
}

// GetToken returns a valid bearer token, requesting a new one only when
// the cached token is missing or past its expiry. The expiry already
// carries a 60 second safety margin.
func (e *ERPService) GetToken(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.token != "" && time.Now().Before(e.tokenExpiry) {
		return e.token, nil
	}

	settings, err := e.store.GetSettings()
	if err != nil {
		return "", err
	}

	var tokenResp tokenResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username":   settings.Username,
			"password":   settings.Password,
			"company":    settings.Company,
			"instance":   settings.Instance,
			"line":       settings.Line,
			"grant_type": settings.GrantType,
		}).
		SetResult(&tokenResp).
		Post(settings.URL + "/WebApi/token")
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	if resp.IsError() {
		log.Printf("ERP token request rejected with status %d", resp.StatusCode())
		return "", fmt.Errorf("%w: token request returned %d", ErrUpstreamAuth, resp.StatusCode())
	}

	e.token = tokenResp.AccessToken
	e.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn-60) * time.Second)

	return e.token, nil
}

// invalidateToken drops the cached token so the next call fetches a fresh one
func (e *ERPService) invalidateToken() {
	e.mu.Lock()
	e.token = ""
	e.tokenExpiry = time.Time{}
	e.mu.Unlock()
}

// CallAPI performs an authenticated GET against {url}/WebApi/{endpoint}
// and decodes the tabular result set into out. A 401 invalidates the
// cached token and the call is retried exactly once with a fresh one.
func (e *ERPService) CallAPI(ctx context.Context, endpoint string, out interface{}) error {
	for attempt := 0; attempt < 2; attempt++ {
		token, err := e.GetToken(ctx)
		if err != nil {
			return err
		}

		settings, err := e.store.GetSettings()
		if err != nil {
			return err
		}

		var envelope apiEnvelope
		resp, err := e.client.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetResult(&envelope).
			Get(settings.URL + "/WebApi/" + endpoint)
		if err != nil {
			return fmt.Errorf("erp request: %w", err)
		}

		if resp.StatusCode() == 401 {
			log.Printf("ERP rejected token on %s, refreshing (attempt %d)", endpoint, attempt+1)
			e.invalidateToken()
			continue
		}
		if resp.IsError() {
			return &UpstreamError{Status: resp.StatusCode()}
		}

		if out != nil && len(envelope.DataSet.Table) > 0 {
			if err := json.Unmarshal(envelope.DataSet.Table, out); err != nil {
				return fmt.Errorf("decode result set: %w", err)
			}
		}
		return nil
	}

	return fmt.Errorf("%w: token rejected after refresh", ErrUpstreamAuth)
}

// salesEndpoint appends the optional serie filter as a query parameter
func salesEndpoint(base, serie string) string {
	if serie == "" {
		return base
	}
	return base + "?serie=" + url.QueryEscape(serie)
}

// GetSeriesVendas returns the selectable sales series
func (e *ERPService) GetSeriesVendas(ctx context.Context) ([]models.SerieOption, error) {
	var series []models.SerieOption
	if err := e.CallAPI(ctx, "GetDados/SeriesVendas", &series); err != nil {
		return nil, err
	}
	return series, nil
}

// GetVendasHoje returns today's sales documents, optionally filtered by serie
func (e *ERPService) GetVendasHoje(ctx context.Context, serie string) ([]models.SaleRow, error) {
	var rows []models.SaleRow
	if err := e.CallAPI(ctx, salesEndpoint("GetDados/VendasPrecHoje", serie), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetVendasSemana returns the last 7 days of sales documents
func (e *ERPService) GetVendasSemana(ctx context.Context, serie string) ([]models.SaleRow, error) {
	var rows []models.SaleRow
	if err := e.CallAPI(ctx, salesEndpoint("GetDados/VendasPrecSemana", serie), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetVendasMes returns the current month's sales documents
func (e *ERPService) GetVendasMes(ctx context.Context, serie string) ([]models.SaleRow, error) {
	var rows []models.SaleRow
	if err := e.CallAPI(ctx, salesEndpoint("GetDados/VendasPrecMes", serie), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTop5VendasHoje returns today's top sales documents
func (e *ERPService) GetTop5VendasHoje(ctx context.Context, serie string) ([]models.SaleRow, error) {
	var rows []models.SaleRow
	if err := e.CallAPI(ctx, salesEndpoint("GetDados/Top5VendasPrecHoje", serie), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTop5VendasSemana returns the last 7 days' top sales documents
func (e *ERPService) GetTop5VendasSemana(ctx context.Context, serie string) ([]models.SaleRow, error) {
	var rows []models.SaleRow
	if err := e.CallAPI(ctx, salesEndpoint("GetDados/Top5VendasPrecSemana", serie), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTop5VendasMes returns the current month's top sales documents
func (e *ERPService) GetTop5VendasMes(ctx context.Context, serie string) ([]models.SaleRow, error) {
	var rows []models.SaleRow
	if err := e.CallAPI(ctx, salesEndpoint("GetDados/Top5VendasPrecMes", serie), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
