package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/customer"
	"github.com/stripe/stripe-go/v78/subscription"
	"github.com/stripe/stripe-go/v78/webhook"
)

var _ GatewayPagamento = (*Stripe)(nil)

// Stripe implementa GatewayPagamento com a biblioteca oficial.
type Stripe struct {
	segredoWebhook string
}

// NewStripe define a chave global da biblioteca e guarda o segredo do webhook.
func NewStripe(chave, segredoWebhook string) *Stripe {
	stripe.Key = chave
	return &Stripe{segredoWebhook: segredoWebhook}
}

func (s *Stripe) CriarCliente(ctx context.Context, nome, email, userID string) (string, error) {
	params := &stripe.CustomerParams{
		Name:  stripe.String(nome),
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.AddMetadata("user_id", userID)

	c, err := customer.New(params)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

func (s *Stripe) CriarCheckout(ctx context.Context, customerID, priceID, urlSucesso, urlCancelamento string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(customerID),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(urlSucesso),
		CancelURL:  stripe.String(urlCancelamento),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

func (s *Stripe) BuscarAssinatura(ctx context.Context, subscriptionID string) (*AssinaturaGateway, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := subscription.Get(subscriptionID, params)
	if err != nil {
		return nil, err
	}
	return &AssinaturaGateway{
		ID:         sub.ID,
		Status:     string(sub.Status),
		FimPeriodo: fimPeriodo(sub.CurrentPeriodEnd),
	}, nil
}

// ConstruirEvento verifica a assinatura do payload e extrai os dados que o
// serviço usa. Eventos de outros tipos voltam só com o Tipo.
func (s *Stripe) ConstruirEvento(payload []byte, assinatura string) (*EventoPagamento, error) {
	event, err := webhook.ConstructEventWithOptions(payload, assinatura, s.segredoWebhook,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, err
	}

	ev := &EventoPagamento{Tipo: string(event.Type)}
	switch ev.Tipo {
	case EventoCheckoutConcluido:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("decodificar checkout: %w", err)
		}
		if cs.Customer != nil {
			ev.CustomerID = cs.Customer.ID
		}
		if cs.Subscription != nil {
			ev.SubscriptionID = cs.Subscription.ID
		}

	case EventoAssinaturaAtualizada, EventoAssinaturaRemovida:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("decodificar assinatura: %w", err)
		}
		if sub.Customer != nil {
			ev.CustomerID = sub.Customer.ID
		}
		ev.SubscriptionID = sub.ID
		ev.Status = string(sub.Status)
		ev.FimPeriodo = fimPeriodo(sub.CurrentPeriodEnd)
	}
	return ev, nil
}

func fimPeriodo(unix int64) time.Time {
	if unix <= 0 {
		return time.Time{}
	}
	return time.Unix(unix, 0).UTC()
}
