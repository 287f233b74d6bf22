package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willjrcristo/gestao-juridica/internal/domain"
)

// --- Mock do gateway de pagamento ---

type MockGateway struct {
	CriarClienteFn     func(ctx context.Context, nome, email, userID string) (string, error)
	CriarCheckoutFn    func(ctx context.Context, customerID, priceID, urlSucesso, urlCancelamento string) (string, error)
	BuscarAssinaturaFn func(ctx context.Context, subscriptionID string) (*AssinaturaGateway, error)
	ConstruirEventoFn  func(payload []byte, assinatura string) (*EventoPagamento, error)
}

func (m *MockGateway) CriarCliente(ctx context.Context, nome, email, userID string) (string, error) {
	return m.CriarClienteFn(ctx, nome, email, userID)
}

func (m *MockGateway) CriarCheckout(ctx context.Context, customerID, priceID, urlSucesso, urlCancelamento string) (string, error) {
	return m.CriarCheckoutFn(ctx, customerID, priceID, urlSucesso, urlCancelamento)
}

func (m *MockGateway) BuscarAssinatura(ctx context.Context, subscriptionID string) (*AssinaturaGateway, error) {
	return m.BuscarAssinaturaFn(ctx, subscriptionID)
}

func (m *MockGateway) ConstruirEvento(payload []byte, assinatura string) (*EventoPagamento, error) {
	return m.ConstruirEventoFn(payload, assinatura)
}

// --- Repositório em memória ---

type repoFake struct {
	assinaturas []domain.Assinatura
	planos      map[string]domain.Plano
}

func novoRepoFake() *repoFake {
	return &repoFake{planos: map[string]domain.Plano{
		"basico":       {Nome: "basico", Preco: 97, StripePriceID: "price_basico"},
		"profissional": {Nome: "profissional", Preco: 197},
	}}
}

func (r *repoFake) BuscarAssinatura(_ context.Context, userID string) (*domain.Assinatura, error) {
	for i := len(r.assinaturas) - 1; i >= 0; i-- {
		if r.assinaturas[i].UserID == userID {
			a := r.assinaturas[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (r *repoFake) InserirAssinatura(_ context.Context, a domain.Assinatura) error {
	a.ID = int64(len(r.assinaturas) + 1)
	r.assinaturas = append(r.assinaturas, a)
	return nil
}

func (r *repoFake) BuscarPlano(_ context.Context, nome string) (*domain.Plano, error) {
	p, ok := r.planos[nome]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *repoFake) DefinirClienteStripe(_ context.Context, id int64, customerID string) error {
	r.assinaturas[id-1].StripeCustomerID = customerID
	return nil
}

func (r *repoFake) BuscarAssinaturaPorClienteStripe(_ context.Context, customerID string) (*domain.Assinatura, error) {
	for i := len(r.assinaturas) - 1; i >= 0; i-- {
		if r.assinaturas[i].StripeCustomerID == customerID {
			a := r.assinaturas[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (r *repoFake) AtualizarStatusAssinatura(_ context.Context, id int64, status, dataFim, subscriptionID string) error {
	a := &r.assinaturas[id-1]
	a.Status = status
	if dataFim != "" {
		a.DataFim = dataFim
	}
	if subscriptionID != "" {
		a.StripeSubscriptionID = subscriptionID
	}
	return nil
}

var ana = Cliente{UserID: "user-1", Nome: "Ana Lima", Email: "ana@example.com"}

func TestAssinaturaService_CriarSessaoCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("sucesso - cria cliente na Stripe e devolve a URL", func(t *testing.T) {
		// Arrange
		repo := novoRepoFake()
		repo.assinaturas = []domain.Assinatura{{ID: 1, UserID: "user-1", Plano: "basico", Status: domain.StatusTeste}}
		gateway := &MockGateway{
			CriarClienteFn: func(ctx context.Context, nome, email, userID string) (string, error) {
				assert.Equal(t, "Ana Lima", nome)
				assert.Equal(t, "user-1", userID)
				return "cus_1", nil
			},
			CriarCheckoutFn: func(ctx context.Context, customerID, priceID, sucesso, cancelamento string) (string, error) {
				assert.Equal(t, "cus_1", customerID)
				assert.Equal(t, "price_basico", priceID)
				assert.Equal(t, "http://localhost:3000/sucesso?session_id={CHECKOUT_SESSION_ID}", sucesso)
				assert.Equal(t, "http://localhost:3000/cancelou", cancelamento)
				return "https://checkout.stripe.com/c/1", nil
			},
		}
		s := NewAssinaturaService(repo, gateway, "http://localhost:3000/", nil)

		// Act
		url, err := s.CriarSessaoCheckout(ctx, ana, "basico")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "https://checkout.stripe.com/c/1", url)
		assert.Equal(t, "cus_1", repo.assinaturas[0].StripeCustomerID)
	})

	t.Run("cliente já existente - não cria outro", func(t *testing.T) {
		repo := novoRepoFake()
		repo.assinaturas = []domain.Assinatura{{ID: 1, UserID: "user-1", Status: domain.StatusCancelada, StripeCustomerID: "cus_9"}}
		gateway := &MockGateway{
			CriarClienteFn: func(context.Context, string, string, string) (string, error) {
				t.Fatal("não deveria criar cliente")
				return "", nil
			},
			CriarCheckoutFn: func(_ context.Context, customerID, _, _, _ string) (string, error) {
				assert.Equal(t, "cus_9", customerID)
				return "https://checkout", nil
			},
		}

		_, err := NewAssinaturaService(repo, gateway, "http://app", nil).CriarSessaoCheckout(ctx, ana, "basico")

		assert.NoError(t, err)
	})

	t.Run("sem assinatura - registra uma pendente", func(t *testing.T) {
		repo := novoRepoFake()
		gateway := &MockGateway{
			CriarClienteFn:  func(context.Context, string, string, string) (string, error) { return "cus_2", nil },
			CriarCheckoutFn: func(context.Context, string, string, string, string) (string, error) { return "https://checkout", nil },
		}
		s := NewAssinaturaService(repo, gateway, "http://app", nil)
		s.agora = func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }

		_, err := s.CriarSessaoCheckout(ctx, ana, "basico")

		require.NoError(t, err)
		require.Len(t, repo.assinaturas, 1)
		a := repo.assinaturas[0]
		assert.Equal(t, domain.StatusPendente, a.Status)
		assert.Equal(t, "2026-10-15", a.DataInicio)
		assert.Equal(t, 97.0, a.Preco)
		assert.Equal(t, "cus_2", a.StripeCustomerID)
	})

	t.Run("erro - assinatura já ativa", func(t *testing.T) {
		repo := novoRepoFake()
		repo.assinaturas = []domain.Assinatura{{ID: 1, UserID: "user-1", Status: domain.StatusAtiva}}

		_, err := NewAssinaturaService(repo, &MockGateway{}, "http://app", nil).CriarSessaoCheckout(ctx, ana, "basico")

		assert.ErrorIs(t, err, ErrAssinaturaJaAtiva)
	})

	t.Run("erro - plano sem preço na Stripe ou inexistente", func(t *testing.T) {
		s := NewAssinaturaService(novoRepoFake(), &MockGateway{}, "http://app", nil)

		_, err := s.CriarSessaoCheckout(ctx, ana, "profissional")
		assert.ErrorIs(t, err, ErrPlanoInvalido)

		_, err = s.CriarSessaoCheckout(ctx, ana, "premium")
		assert.ErrorIs(t, err, ErrPlanoInvalido)
	})

	t.Run("erro - falha na Stripe", func(t *testing.T) {
		repo := novoRepoFake()
		falha := errors.New("stripe fora do ar")
		gateway := &MockGateway{
			CriarClienteFn: func(context.Context, string, string, string) (string, error) { return "", falha },
		}

		_, err := NewAssinaturaService(repo, gateway, "http://app", nil).CriarSessaoCheckout(ctx, ana, "basico")

		assert.ErrorIs(t, err, falha)
	})
}

func TestAssinaturaService_ProcessarWebhook(t *testing.T) {
	ctx := context.Background()
	fim := time.Date(2026, 11, 15, 3, 0, 0, 0, time.UTC)

	novoRepo := func() *repoFake {
		repo := novoRepoFake()
		repo.assinaturas = []domain.Assinatura{{
			ID: 1, UserID: "user-1", Plano: "basico", Status: domain.StatusTeste, DataFim: "2026-10-29", StripeCustomerID: "cus_1",
		}}
		return repo
	}

	t.Run("checkout concluído - ativa a assinatura com o período da Stripe", func(t *testing.T) {
		// Arrange
		repo := novoRepo()
		gateway := &MockGateway{
			ConstruirEventoFn: func(payload []byte, assinatura string) (*EventoPagamento, error) {
				assert.Equal(t, "t=1,v1=abc", assinatura)
				return &EventoPagamento{Tipo: EventoCheckoutConcluido, CustomerID: "cus_1", SubscriptionID: "sub_1"}, nil
			},
			BuscarAssinaturaFn: func(_ context.Context, id string) (*AssinaturaGateway, error) {
				assert.Equal(t, "sub_1", id)
				return &AssinaturaGateway{ID: "sub_1", Status: domain.StatusAtiva, FimPeriodo: fim}, nil
			},
		}

		// Act
		err := NewAssinaturaService(repo, gateway, "", nil).ProcessarWebhook(ctx, []byte("{}"), "t=1,v1=abc")

		// Assert
		require.NoError(t, err)
		a := repo.assinaturas[0]
		assert.Equal(t, domain.StatusAtiva, a.Status)
		assert.Equal(t, "2026-11-15", a.DataFim)
		assert.Equal(t, "sub_1", a.StripeSubscriptionID)
	})

	t.Run("assinatura removida - espelha o status", func(t *testing.T) {
		repo := novoRepo()
		gateway := &MockGateway{
			ConstruirEventoFn: func([]byte, string) (*EventoPagamento, error) {
				return &EventoPagamento{
					Tipo: EventoAssinaturaRemovida, CustomerID: "cus_1", SubscriptionID: "sub_1", Status: domain.StatusCancelada,
				}, nil
			},
		}

		err := NewAssinaturaService(repo, gateway, "", nil).ProcessarWebhook(ctx, nil, "")

		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelada, repo.assinaturas[0].Status)
		assert.Equal(t, "2026-10-29", repo.assinaturas[0].DataFim, "sem período a data não muda")
	})

	t.Run("cliente desconhecido - ignora", func(t *testing.T) {
		repo := novoRepo()
		gateway := &MockGateway{
			ConstruirEventoFn: func([]byte, string) (*EventoPagamento, error) {
				return &EventoPagamento{Tipo: EventoAssinaturaAtualizada, CustomerID: "cus_x", Status: domain.StatusAtiva}, nil
			},
		}

		err := NewAssinaturaService(repo, gateway, "", nil).ProcessarWebhook(ctx, nil, "")

		require.NoError(t, err)
		assert.Equal(t, domain.StatusTeste, repo.assinaturas[0].Status)
	})

	t.Run("evento não tratado", func(t *testing.T) {
		gateway := &MockGateway{
			ConstruirEventoFn: func([]byte, string) (*EventoPagamento, error) {
				return &EventoPagamento{Tipo: "invoice.paid"}, nil
			},
		}

		assert.NoError(t, NewAssinaturaService(novoRepo(), gateway, "", nil).ProcessarWebhook(ctx, nil, ""))
	})

	t.Run("erro - assinatura do webhook inválida", func(t *testing.T) {
		gateway := &MockGateway{
			ConstruirEventoFn: func([]byte, string) (*EventoPagamento, error) {
				return nil, errors.New("assinatura não confere")
			},
		}

		err := NewAssinaturaService(novoRepo(), gateway, "", nil).ProcessarWebhook(ctx, nil, "")

		assert.ErrorIs(t, err, ErrWebhookStripe)
	})
}
