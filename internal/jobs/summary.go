package jobs

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/rfaria/vendaszap-backend/internal/handlers"
	"github.com/rfaria/vendaszap-backend/internal/models"
	"github.com/rfaria/vendaszap-backend/internal/services"
	"github.com/rfaria/vendaszap-backend/internal/storage"
)

// SummaryJob pushes a daily sales digest to every authorized number.
// Disabled unless DAILY_SUMMARY_HOUR is set (0-23, local time).
type SummaryJob struct {
	store     storage.Store
	erp       services.ReportClient
	sender    handlers.MessageSender
	isRunning bool
}

// NewSummaryJob creates the daily digest scheduler
func NewSummaryJob(store storage.Store, erp services.ReportClient, sender handlers.MessageSender) *SummaryJob {
	return &SummaryJob{
		store:  store,
		erp:    erp,
		sender: sender,
	}
}

// Start begins the scheduling loop if the job is configured
func (j *SummaryJob) Start() {
	hourEnv := os.Getenv("DAILY_SUMMARY_HOUR")
	if hourEnv == "" {
		log.Println("Daily summary job disabled (DAILY_SUMMARY_HOUR not set)")
		return
	}
	hour, err := strconv.Atoi(hourEnv)
	if err != nil || hour < 0 || hour > 23 {
		log.Printf("Invalid DAILY_SUMMARY_HOUR %q, daily summary job disabled", hourEnv)
		return
	}
	if j.sender == nil {
		log.Println("Daily summary job disabled (Twilio not configured)")
		return
	}

	j.isRunning = true
	go j.scheduleDailySummary(hour)
	log.Printf("Daily summary job scheduled for %02d:00", hour)
}

// Stop halts the scheduling loop after the current sleep
func (j *SummaryJob) Stop() {
	j.isRunning = false
}

func (j *SummaryJob) scheduleDailySummary(hour int) {
	for j.isRunning {
		now := time.Now()
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
		if !nextRun.After(now) {
			nextRun = nextRun.AddDate(0, 0, 1)
		}

		log.Printf("Next daily summary in %v", nextRun.Sub(now))
		time.Sleep(nextRun.Sub(now))

		if !j.isRunning {
			break
		}
		j.sendDailySummaries()
	}
}

// sendDailySummaries fetches today's sales once and fans the digest out
func (j *SummaryJob) sendDailySummaries() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := j.erp.GetVendasHoje(ctx, "")
	if err != nil {
		log.Printf("Daily summary skipped, report fetch failed: %v", err)
		return
	}

	var total float64
	for _, row := range rows {
		total += row.TotalMerc.Float64()
	}

	digest := fmt.Sprintf("📈 *Resumo Diário de Vendas*\n\nDocumentos: %d\n*Total: €%.2f*", len(rows), total)
	if len(rows) == 0 {
		digest = "📈 *Resumo Diário de Vendas*\n\nNão há vendas registradas hoje."
	}

	numbers, err := j.store.GetAllAuthorizedNumbers()
	if err != nil {
		log.Printf("Daily summary skipped, allow-list unavailable: %v", err)
		return
	}

	for _, number := range numbers {
		if err := j.sender.SendWhatsAppMessage(number.Phone, digest); err != nil {
			log.Printf("Failed to send daily summary to %s: %v", number.Phone, err)
			continue
		}
		if _, err := j.store.CreateMessage(number.Phone, digest, models.DirectionSent); err != nil {
			log.Printf("Failed to log daily summary for %s: %v", number.Phone, err)
		}
	}

	log.Printf("Daily summary sent to %d numbers", len(numbers))
}
