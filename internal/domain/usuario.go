package domain

import "strings"

// Rótulos fixos usados na composição do usuário da sessão.
const (
	PlanoAdministrador = "Administrador"
	PlanoTeste         = "Teste"
	NomePadrao         = "Usuário"

	// DiasTeste é a duração do período de teste concedido no cadastro.
	DiasTeste = 14
)

// Usuario é o usuário autenticado da sessão atual.
// As tags JSON seguem o formato do snapshot salvo no armazenamento local,
// o mesmo lido pelo frontend.
type Usuario struct {
	ID    string `json:"id"`
	Nome  string `json:"name"`
	Email string `json:"email"`

	// Atributos opcionais do perfil do advogado.
	Telefone string `json:"phone,omitempty"`
	OAB      string `json:"oab,omitempty"`
	Bio      string `json:"bio,omitempty"`

	// Plano contratado, ou PlanoAdministrador para o administrador.
	Plano string `json:"plan"`

	// Data (AAAA-MM-DD) de fim do período de teste. Ausente para o administrador.
	TrialEndsAt string `json:"trialEndsAt,omitempty"`

	// Referência do método de pagamento na Stripe (ex: "pm_...").
	PaymentMethodID string `json:"paymentMethodId,omitempty"`

	IsAdmin bool `json:"isAdmin"`

	// ID do registro de perfil (tabela advogados). Vazio até o perfil ser criado.
	ProfileID string `json:"profileId,omitempty"`
}

// Cadastro reúne os dados informados no formulário de cadastro.
type Cadastro struct {
	Nome            string `json:"nome"`
	Email           string `json:"email"`
	Senha           string `json:"senha"`
	Plano           string `json:"plano,omitempty"`
	PaymentMethodID string `json:"payment_method_id,omitempty"`
}

// AtualizacaoPerfil é uma atualização parcial do usuário.
// Campos nil não foram informados e não são alterados.
type AtualizacaoPerfil struct {
	Nome     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Telefone *string `json:"phone,omitempty"`
	OAB      *string `json:"oab,omitempty"`
	Bio      *string `json:"bio,omitempty"`
}

// Vazia informa se nenhum campo foi informado.
func (a AtualizacaoPerfil) Vazia() bool {
	return a.Nome == nil && a.Email == nil && a.Telefone == nil && a.OAB == nil && a.Bio == nil
}

// Aplicar devolve uma cópia de u com os campos informados em a.
func (a AtualizacaoPerfil) Aplicar(u Usuario) Usuario {
	if a.Nome != nil {
		u.Nome = *a.Nome
	}
	if a.Email != nil {
		u.Email = *a.Email
	}
	if a.Telefone != nil {
		u.Telefone = *a.Telefone
	}
	if a.OAB != nil {
		u.OAB = *a.OAB
	}
	if a.Bio != nil {
		u.Bio = *a.Bio
	}
	return u
}

// ParteLocalEmail devolve o trecho antes do "@" (o email inteiro se não houver "@").
func ParteLocalEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
