package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfaria/vendaszap-backend/internal/models"
	"github.com/rfaria/vendaszap-backend/internal/services"
	"github.com/rfaria/vendaszap-backend/internal/storage"
)

type stubReports struct {
	rows []models.SaleRow
}

func (s *stubReports) GetSeriesVendas(ctx context.Context) ([]models.SerieOption, error) {
	return nil, nil
}

func (s *stubReports) GetVendasHoje(ctx context.Context, serie string) ([]models.SaleRow, error) {
	return s.rows, nil
}

func (s *stubReports) GetVendasSemana(ctx context.Context, serie string) ([]models.SaleRow, error) {
	return s.rows, nil
}

func (s *stubReports) GetVendasMes(ctx context.Context, serie string) ([]models.SaleRow, error) {
	return s.rows, nil
}

func (s *stubReports) GetTop5VendasHoje(ctx context.Context, serie string) ([]models.SaleRow, error) {
	return s.rows, nil
}

func (s *stubReports) GetTop5VendasSemana(ctx context.Context, serie string) ([]models.SaleRow, error) {
	return s.rows, nil
}

func (s *stubReports) GetTop5VendasMes(ctx context.Context, serie string) ([]models.SaleRow, error) {
	return s.rows, nil
}

type stubSender struct {
	sent []string
}

func (s *stubSender) SendWhatsAppMessage(to, message string) error {
	s.sent = append(s.sent, message)
	return nil
}

type stubNotifier struct {
	notified int
}

func (s *stubNotifier) NotifyNewMessage() {
	s.notified++
}

type webhookFixture struct {
	app      *fiber.App
	store    *storage.MemoryStore
	sessions *services.SessionStore
	sender   *stubSender
	notifier *stubNotifier
}

func newWebhookFixture(rows []models.SaleRow) *webhookFixture {
	store := storage.NewMemoryStore()
	sessions := services.NewSessionStore()
	bot := services.NewBotService(sessions, &stubReports{rows: rows})
	sender := &stubSender{}
	notifier := &stubNotifier{}

	handler := NewWhatsAppHandler(store, bot, sender, notifier)

	app := fiber.New()
	app.Post("/webhook/whatsapp", handler.HandleWebhook)

	return &webhookFixture{
		app:      app,
		store:    store,
		sessions: sessions,
		sender:   sender,
		notifier: notifier,
	}
}

func (f *webhookFixture) post(t *testing.T, from, body string) *http.Response {
	t.Helper()

	form := url.Values{}
	form.Set("MessageSid", "SM123")
	form.Set("From", from)
	form.Set("Body", body)

	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestUnauthorizedSenderIsLoggedButNotAnswered(t *testing.T) {
	f := newWebhookFixture(nil)

	resp := f.post(t, "whatsapp:+351999999999", "1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	messages, err := f.store.GetAllMessages()
	require.NoError(t, err)
	require.Len(t, messages, 1, "inbound message must still be logged")
	assert.Equal(t, models.DirectionReceived, messages[0].Direction)
	assert.Equal(t, "351999999999", messages[0].Phone)

	assert.Empty(t, f.sender.sent, "no automated reply")
	assert.Equal(t, 0, f.sessions.Count(), "no session mutation")
	assert.Equal(t, 1, f.notifier.notified, "dashboard still sees the message")
}

func TestAuthorizedSenderGetsReplyAndBothDirectionsLogged(t *testing.T) {
	f := newWebhookFixture(nil)
	_, err := f.store.CreateAuthorizedNumber("+351912345678", "Gerente")
	require.NoError(t, err)

	f.post(t, "whatsapp:+351912345678", "olá")

	messages, err := f.store.GetAllMessages()
	require.NoError(t, err)
	require.Len(t, messages, 2)
	// Newest first: the reply, then the inbound message
	assert.Equal(t, models.DirectionSent, messages[0].Direction)
	assert.Contains(t, messages[0].Content, "Menu Principal")
	assert.Equal(t, models.DirectionReceived, messages[1].Direction)

	require.Len(t, f.sender.sent, 1)
	assert.Contains(t, f.sender.sent[0], "Menu Principal")
	assert.Equal(t, 2, f.notifier.notified)
}

func TestWebhookDrivesMenuToTop5Report(t *testing.T) {
	rows := []models.SaleRow{{TipoDoc: "FT", Serie: "A", NumDoc: "1", TotalMerc: 10.00}}
	f := newWebhookFixture(rows)
	_, err := f.store.CreateAuthorizedNumber("+351912345678", "Gerente")
	require.NoError(t, err)

	f.post(t, "whatsapp:+351912345678", "2")
	f.post(t, "whatsapp:+351912345678", "2")
	f.post(t, "whatsapp:+351912345678", "1")

	require.Len(t, f.sender.sent, 3, "exactly one reply per inbound message")
	assert.Contains(t, f.sender.sent[2], "1. FT A/1")
	assert.Contains(t, f.sender.sent[2], "€10.00")

	assert.Equal(t, services.StepMain, f.sessions.Get("351912345678").Step)
}

func TestStatusCallbackWithoutBodyIsIgnored(t *testing.T) {
	f := newWebhookFixture(nil)

	resp := f.post(t, "whatsapp:+351912345678", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	messages, err := f.store.GetAllMessages()
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.Equal(t, 0, f.notifier.notified)
}
