package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/rfaria/vendaszap-backend/internal/models"
)

// ReportClient is the slice of the ERP client the bot needs
type ReportClient interface {
	GetSeriesVendas(ctx context.Context) ([]models.SerieOption, error)
	GetVendasHoje(ctx context.Context, serie string) ([]models.SaleRow, error)
	GetVendasSemana(ctx context.Context, serie string) ([]models.SaleRow, error)
	GetVendasMes(ctx context.Context, serie string) ([]models.SaleRow, error)
	GetTop5VendasHoje(ctx context.Context, serie string) ([]models.SaleRow, error)
	GetTop5VendasSemana(ctx context.Context, serie string) ([]models.SaleRow, error)
	GetTop5VendasMes(ctx context.Context, serie string) ([]models.SaleRow, error)
}

// menuFamily distinguishes the two report branches of the menu
type menuFamily int

const (
	familyVendas menuFamily = iota // aggregate sales, periods: hoje/semana
	familyTop5                     // top 5 sales, periods: hoje/semana/mês
)

type period int

const (
	periodHoje period = iota
	periodSemana
	periodMes
)

// name is used in report headers, empty in "no sales" replies
var periodLabels = map[period]struct {
	name  string
	empty string
}{
	periodHoje:   {"de Hoje", "hoje"},
	periodSemana: {"da Semana", "esta semana"},
	periodMes:    {"do Mês", "este mês"},
}

const (
	mainMenuText = "Olá! Bem-vindo ao sistema de automação.\n\n*Menu Principal:*\n\n1. Vendas\n2. Top 5 Vendas\n\nDigite o número da opção desejada."

	lojaPromptVendas  = "💰 *Vendas*\n\n1. Por Loja/Serie\n2. Todas as Lojas"
	lojaPromptTop5    = "📊 *Top 5 Vendas*\n\n1. Por Loja/Serie\n2. Todas as Lojas"
	lojaInvalidPrompt = "Opção inválida. Por favor, escolha:\n\n1. Por Loja/Serie\n2. Todas as Lojas"

	periodoOptionsVendas = "Escolha o período:\n\n1. Hoje\n2. Últimos 7 dias"
	periodoOptionsTop5   = "Escolha o período:\n\n1. Hoje\n2. Ultimos 7 dias\n3. Mês"

	periodoInvalidVendas = "Opção inválida. Por favor, escolha:\n\n1. Hoje\n2. Últimos 7 dias"
	periodoInvalidTop5   = "Opção inválida. Por favor, escolha:\n\n1. Hoje\n2. Semana\n3. Mês"

	noSeriesText    = "Nenhuma série disponível no momento."
	seriesErrorText = "Erro ao buscar séries disponíveis. Tente novamente."
	reportErrorText = "Desculpe, ocorreu um erro ao buscar as vendas. Por favor, tente novamente mais tarde."

	backToMenuFooter = "---\nDigite qualquer mensagem para voltar ao menu principal."
)

// BotService runs the conversational menu. Each inbound message from an
// authorized sender produces exactly one reply and at most one report call.
type BotService struct {
	sessions *SessionStore
	reports  ReportClient
}

// NewBotService creates the menu state machine
func NewBotService(sessions *SessionStore, reports ReportClient) *BotService {
	return &BotService{
		sessions: sessions,
		reports:  reports,
	}
}

// HandleMessage advances the sender's session one step and returns the
// reply text. Report failures never propagate: they become a generic
// apology and the session resets to the main menu.
func (b *BotService) HandleMessage(ctx context.Context, phone, text string) string {
	text = strings.TrimSpace(text)
	session := b.sessions.Get(phone)

	switch session.Step {
	case StepVendasGlobaisLoja:
		return b.handleLojaStep(ctx, session, text, familyVendas)
	case StepVendasGlobaisSerie:
		return b.handleSerieStep(session, text, familyVendas)
	case StepVendasGlobaisPeriodo:
		return b.handlePeriodoStep(ctx, session, text, familyVendas)
	case StepVendasLoja:
		return b.handleLojaStep(ctx, session, text, familyTop5)
	case StepVendasSerie:
		return b.handleSerieStep(session, text, familyTop5)
	case StepVendasPeriodo:
		return b.handlePeriodoStep(ctx, session, text, familyTop5)
	default:
		return b.handleMainStep(session, text)
	}
}

// handleMainStep routes the two top-level menu options
func (b *BotService) handleMainStep(session Session, text string) string {
	switch text {
	case "1":
		b.sessions.Set(Session{Phone: session.Phone, Step: StepVendasGlobaisLoja})
		return lojaPromptVendas
	case "2":
		b.sessions.Set(Session{Phone: session.Phone, Step: StepVendasLoja})
		return lojaPromptTop5
	default:
		b.sessions.Set(Session{Phone: session.Phone, Step: StepMain})
		return mainMenuText
	}
}

// handleLojaStep asks whether the report should be filtered by series
func (b *BotService) handleLojaStep(ctx context.Context, session Session, text string, family menuFamily) string {
	switch text {
	case "1":
		series, err := b.reports.GetSeriesVendas(ctx)
		if err != nil {
			log.Printf("Failed to fetch series for %s: %v", session.Phone, err)
			b.sessions.Reset(session.Phone)
			return seriesErrorText
		}
		if len(series) == 0 {
			b.sessions.Reset(session.Phone)
			return noSeriesText
		}

		b.sessions.Set(Session{
			Phone:      session.Phone,
			Step:       serieStepFor(family),
			SeriesList: series,
		})

		var sb strings.Builder
		sb.WriteString("📋 *Séries Disponíveis:*\n\n")
		for i, s := range series {
			fmt.Fprintf(&sb, "%d. %s - %s\n", i+1, s.Serie, s.Descricao)
		}
		sb.WriteString("\nDigite o número da opção desejada:")
		return sb.String()

	case "2":
		b.sessions.Set(Session{
			Phone: session.Phone,
			Step:  periodoStepFor(family),
		})
		return periodoPrompt(family, "", "")

	default:
		return lojaInvalidPrompt
	}
}

// handleSerieStep resolves a 1-based selection from the stored series list
func (b *BotService) handleSerieStep(session Session, text string, family menuFamily) string {
	index, err := strconv.Atoi(text)
	if err != nil || index < 1 || index > len(session.SeriesList) {
		// Out of range, keep the session where it is
		return fmt.Sprintf("Opção inválida. Por favor, escolha um número entre 1 e %d.", len(session.SeriesList))
	}

	selected := session.SeriesList[index-1]
	b.sessions.Set(Session{
		Phone: session.Phone,
		Step:  periodoStepFor(family),
		Serie: selected.Serie,
	})
	return periodoPrompt(family, selected.Serie, selected.Descricao)
}

// handlePeriodoStep runs the leaf action: fetch, format, reset to main
func (b *BotService) handlePeriodoStep(ctx context.Context, session Session, text string, family menuFamily) string {
	var p period
	switch text {
	case "1":
		p = periodHoje
	case "2":
		p = periodSemana
	case "3":
		if family != familyTop5 {
			return periodoInvalidVendas
		}
		p = periodMes
	default:
		if family == familyTop5 {
			return periodoInvalidTop5
		}
		return periodoInvalidVendas
	}

	rows, err := b.fetchReport(ctx, family, p, session.Serie)

	var reply string
	if err != nil {
		log.Printf("Failed to fetch vendas %s for %s: %v", periodLabels[p].name, session.Phone, err)
		reply = reportErrorText
	} else if len(rows) == 0 {
		reply = noSalesText(p, session.Serie)
	} else if family == familyTop5 {
		reply = formatTop5Report(rows, p, session.Serie)
	} else {
		reply = formatVendasReport(rows, p, session.Serie)
	}

	// Leaf actions always land back on the main menu, even on failure
	b.sessions.Reset(session.Phone)

	if family == familyTop5 {
		// Ranked rows already end in a blank line
		return reply + backToMenuFooter
	}
	return reply + "\n" + backToMenuFooter
}

func (b *BotService) fetchReport(ctx context.Context, family menuFamily, p period, serie string) ([]models.SaleRow, error) {
	if family == familyTop5 {
		switch p {
		case periodHoje:
			return b.reports.GetTop5VendasHoje(ctx, serie)
		case periodSemana:
			return b.reports.GetTop5VendasSemana(ctx, serie)
		default:
			return b.reports.GetTop5VendasMes(ctx, serie)
		}
	}
	switch p {
	case periodHoje:
		return b.reports.GetVendasHoje(ctx, serie)
	default:
		return b.reports.GetVendasSemana(ctx, serie)
	}
}

func serieStepFor(family menuFamily) Step {
	if family == familyTop5 {
		return StepVendasSerie
	}
	return StepVendasGlobaisSerie
}

func periodoStepFor(family menuFamily) Step {
	if family == familyTop5 {
		return StepVendasPeriodo
	}
	return StepVendasGlobaisPeriodo
}

func periodoPrompt(family menuFamily, serie, descricao string) string {
	if family == familyTop5 {
		if serie == "" {
			return "📊 *Top 5 Vendas*\n\n" + periodoOptionsTop5
		}
		return fmt.Sprintf("📊 *Top 5 Vendas - Série %s (%s)*\n\n%s", serie, descricao, periodoOptionsTop5)
	}
	if serie == "" {
		return "💰 *Vendas*\n\n" + periodoOptionsVendas
	}
	return fmt.Sprintf("💰 *Vendas - Série %s (%s)*\n\n%s", serie, descricao, periodoOptionsVendas)
}

func noSalesText(p period, serie string) string {
	if serie != "" {
		return fmt.Sprintf("Não há vendas registradas %s para a série %s.", periodLabels[p].empty, serie)
	}
	return fmt.Sprintf("Não há vendas registradas %s.", periodLabels[p].empty)
}

// formatVendasReport lists every document with a running total
func formatVendasReport(rows []models.SaleRow, p period, serie string) string {
	var sb strings.Builder
	if serie != "" {
		fmt.Fprintf(&sb, "💰 *Vendas %s - Série %s:*\n\n", periodLabels[p].name, serie)
	} else {
		fmt.Fprintf(&sb, "💰 *Vendas %s:*\n\n", periodLabels[p].name)
	}

	var total float64
	for _, row := range rows {
		fmt.Fprintf(&sb, "%s %s/%s - €%.2f\n", row.TipoDoc, row.Serie, row.NumDoc, row.TotalMerc.Float64())
		total += row.TotalMerc.Float64()
	}
	fmt.Fprintf(&sb, "\n*Total: €%.2f*", total)
	return sb.String()
}

// formatTop5Report ranks up to five documents in upstream order
func formatTop5Report(rows []models.SaleRow, p period, serie string) string {
	var sb strings.Builder
	if serie != "" {
		fmt.Fprintf(&sb, "🏆 *Top 5 Vendas %s - Série %s:*\n\n", periodLabels[p].name, serie)
	} else {
		fmt.Fprintf(&sb, "🏆 *Top 5 Vendas %s:*\n\n", periodLabels[p].name)
	}

	if len(rows) > 5 {
		rows = rows[:5]
	}
	for i, row := range rows {
		fmt.Fprintf(&sb, "%d. %s %s/%s\n", i+1, row.TipoDoc, row.Serie, row.NumDoc)
		fmt.Fprintf(&sb, "   💰 Total: €%.2f\n\n", row.TotalMerc.Float64())
	}
	return sb.String()
}
