package domain

import "time"

// Status possíveis de uma assinatura. "trial" é gravado no cadastro; os demais
// espelham o status da assinatura na Stripe.
const (
	StatusTeste     = "trial"
	StatusPendente  = "incomplete"
	StatusAtiva     = "active"
	StatusCancelada = "canceled"
)

// FormatoData é o formato das datas de início e fim guardadas nas assinaturas.
const FormatoData = "2006-01-02"

// Assinatura é um registro da tabela assinaturas.
type Assinatura struct {
	ID         int64   `json:"id"`
	UserID     string  `json:"user_id"`
	Plano      string  `json:"plano"`
	DataInicio string  `json:"data_inicio"`
	DataFim    string  `json:"data_fim"`
	Preco      float64 `json:"preco"`
	Status     string  `json:"status"`

	// Referências na Stripe. Nenhuma delas é exposta na API.
	StripePaymentMethodID string `json:"-"`
	StripeCustomerID      string `json:"-"`
	StripeSubscriptionID  string `json:"-"`

	CriadoEm time.Time `json:"criado_em"`
}

// Plano é uma entrada do catálogo de planos.
type Plano struct {
	Nome          string  `json:"nome"`
	Preco         float64 `json:"preco"`
	StripePriceID string  `json:"-"`
}

// Perfil é o registro do advogado (tabela advogados), chaveado pelo ID do usuário.
type Perfil struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Telefone string `json:"telefone"`
	OAB      string `json:"oab"`
	Bio      string `json:"bio"`
}

// Conta é uma conta do provedor de identidade.
type Conta struct {
	ID        string
	Email     string
	SenhaHash string
	Metadados Metadados
	CriadoEm  time.Time
}

// Metadados são os dados livres guardados junto da conta no provedor de identidade.
type Metadados struct {
	Nome  string `json:"name,omitempty"`
	Admin bool   `json:"is_admin,omitempty"`
	Plano string `json:"plan,omitempty"`
}
