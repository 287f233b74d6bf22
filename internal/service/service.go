package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/willjrcristo/gestao-juridica/internal/domain"
)

// Erros de negócio relacionados à assinatura.
var (
	ErrPlanoInvalido     = errors.New("plano inexistente ou sem preço na Stripe")
	ErrAssinaturaJaAtiva = errors.New("usuário já possui uma assinatura ativa")
	ErrWebhookStripe     = errors.New("erro ao processar webhook da stripe")
)

// Tipos de evento da Stripe tratados pelo webhook.
const (
	EventoCheckoutConcluido    = "checkout.session.completed"
	EventoAssinaturaAtualizada = "customer.subscription.updated"
	EventoAssinaturaRemovida   = "customer.subscription.deleted"
)

// AssinaturaRepository é o que o serviço usa do repositório.
type AssinaturaRepository interface {
	BuscarAssinatura(ctx context.Context, userID string) (*domain.Assinatura, error)
	InserirAssinatura(ctx context.Context, a domain.Assinatura) error
	BuscarPlano(ctx context.Context, nome string) (*domain.Plano, error)
	DefinirClienteStripe(ctx context.Context, assinaturaID int64, customerID string) error
	BuscarAssinaturaPorClienteStripe(ctx context.Context, customerID string) (*domain.Assinatura, error)
	AtualizarStatusAssinatura(ctx context.Context, assinaturaID int64, status, dataFim, subscriptionID string) error
}

// AssinaturaGateway é a assinatura como a Stripe a devolve.
type AssinaturaGateway struct {
	ID         string
	Status     string
	FimPeriodo time.Time
}

// EventoPagamento é um evento de webhook já verificado.
type EventoPagamento struct {
	Tipo           string
	CustomerID     string
	SubscriptionID string
	// Preenchidos apenas nos eventos de assinatura.
	Status     string
	FimPeriodo time.Time
}

// GatewayPagamento isola as chamadas à Stripe.
type GatewayPagamento interface {
	CriarCliente(ctx context.Context, nome, email, userID string) (string, error)
	CriarCheckout(ctx context.Context, customerID, priceID, urlSucesso, urlCancelamento string) (string, error)
	BuscarAssinatura(ctx context.Context, subscriptionID string) (*AssinaturaGateway, error)
	ConstruirEvento(payload []byte, assinatura string) (*EventoPagamento, error)
}

// Cliente identifica quem está contratando o plano.
type Cliente struct {
	UserID string
	Nome   string
	Email  string
}

// AssinaturaService encapsula a contratação de planos pela Stripe.
type AssinaturaService struct {
	repo        AssinaturaRepository
	gateway     GatewayPagamento
	frontendURL string
	logger      *slog.Logger
	agora       func() time.Time
}

// NewAssinaturaService cria uma nova instância do AssinaturaService.
func NewAssinaturaService(repo AssinaturaRepository, gateway GatewayPagamento, frontendURL string, logger *slog.Logger) *AssinaturaService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssinaturaService{
		repo:        repo,
		gateway:     gateway,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
		agora:       time.Now,
	}
}

// CriarSessaoCheckout cria uma sessão de pagamento na Stripe e devolve a URL.
func (s *AssinaturaService) CriarSessaoCheckout(ctx context.Context, c Cliente, nomePlano string) (string, error) {
	plano, err := s.repo.BuscarPlano(ctx, nomePlano)
	if err != nil {
		return "", err
	}
	if plano == nil || plano.StripePriceID == "" {
		return "", ErrPlanoInvalido
	}

	a, err := s.assinaturaDoUsuario(ctx, c.UserID, plano)
	if err != nil {
		return "", err
	}
	if a.Status == domain.StatusAtiva {
		return "", ErrAssinaturaJaAtiva
	}

	customerID := a.StripeCustomerID
	if customerID == "" {
		customerID, err = s.gateway.CriarCliente(ctx, c.Nome, c.Email, c.UserID)
		if err != nil {
			s.logger.Error("Falha ao criar cliente na Stripe", "user_id", c.UserID, "error", err)
			return "", err
		}
		if err := s.repo.DefinirClienteStripe(ctx, a.ID, customerID); err != nil {
			return "", err
		}
	}

	url, err := s.gateway.CriarCheckout(ctx, customerID, plano.StripePriceID,
		s.frontendURL+"/sucesso?session_id={CHECKOUT_SESSION_ID}",
		s.frontendURL+"/cancelou")
	if err != nil {
		s.logger.Error("Falha ao criar a sessão de checkout na Stripe", "user_id", c.UserID, "error", err)
		return "", err
	}
	return url, nil
}

// assinaturaDoUsuario devolve a assinatura mais recente, criando uma pendente
// quando o usuário ainda não tem nenhuma.
func (s *AssinaturaService) assinaturaDoUsuario(ctx context.Context, userID string, plano *domain.Plano) (*domain.Assinatura, error) {
	a, err := s.repo.BuscarAssinatura(ctx, userID)
	if err != nil || a != nil {
		return a, err
	}

	nova := domain.Assinatura{
		UserID:     userID,
		Plano:      plano.Nome,
		DataInicio: s.agora().Format(domain.FormatoData),
		Preco:      plano.Preco,
		Status:     domain.StatusPendente,
	}
	if err := s.repo.InserirAssinatura(ctx, nova); err != nil {
		return nil, err
	}
	a, err = s.repo.BuscarAssinatura(ctx, userID)
	if err == nil && a == nil {
		err = fmt.Errorf("assinatura do usuário %s não encontrada após inserção", userID)
	}
	return a, err
}

// ProcessarWebhook verifica e aplica um evento recebido da Stripe.
func (s *AssinaturaService) ProcessarWebhook(ctx context.Context, payload []byte, assinatura string) error {
	ev, err := s.gateway.ConstruirEvento(payload, assinatura)
	if err != nil {
		s.logger.Error("Erro ao verificar a assinatura do webhook", "error", err)
		return fmt.Errorf("%w: %w", ErrWebhookStripe, err)
	}

	switch ev.Tipo {
	case EventoCheckoutConcluido:
		// O evento do checkout não traz o período; a assinatura é consultada.
		sub, err := s.gateway.BuscarAssinatura(ctx, ev.SubscriptionID)
		if err != nil {
			return err
		}
		return s.atualizarAssinatura(ctx, ev.CustomerID, sub.Status, sub.FimPeriodo, sub.ID)

	case EventoAssinaturaAtualizada, EventoAssinaturaRemovida:
		return s.atualizarAssinatura(ctx, ev.CustomerID, ev.Status, ev.FimPeriodo, ev.SubscriptionID)

	default:
		s.logger.Info("Webhook da Stripe recebido, mas não tratado", "event_type", ev.Tipo)
	}
	return nil
}

func (s *AssinaturaService) atualizarAssinatura(ctx context.Context, customerID, status string, fim time.Time, subscriptionID string) error {
	a, err := s.repo.BuscarAssinaturaPorClienteStripe(ctx, customerID)
	if err != nil {
		return err
	}
	if a == nil {
		s.logger.Warn("Cliente da Stripe sem assinatura local", "customer_id", customerID)
		return nil
	}

	var dataFim string
	if !fim.IsZero() {
		dataFim = fim.UTC().Format(domain.FormatoData)
	}
	if err := s.repo.AtualizarStatusAssinatura(ctx, a.ID, status, dataFim, subscriptionID); err != nil {
		return err
	}
	s.logger.Info("Assinatura atualizada pela Stripe", "assinatura_id", a.ID, "status", status)
	return nil
}
