// Package identidade define o provedor de identidade consumido pela sessão e uma
// implementação local baseada em contas no SQLite, senhas bcrypt e tokens JWT.
package identidade

import (
	"context"
	"errors"
	"time"

	"github.com/willjrcristo/gestao-juridica/internal/domain"
)

// TipoEvento é o tipo de uma notificação de mudança de autenticação.
type TipoEvento string

const (
	EventoEntrou TipoEvento = "SIGNED_IN"
	EventoSaiu   TipoEvento = "SIGNED_OUT"
)

var (
	ErrContaNaoEncontrada   = errors.New("conta não encontrada")
	ErrCredenciaisInvalidas = errors.New("credenciais de login inválidas")
	ErrEmailJaCadastrado    = errors.New("usuário já cadastrado")
	ErrEmailInvalido        = errors.New("email inválido")
	ErrSenhaCurta           = errors.New("a senha deve ter pelo menos 6 caracteres")
	ErrSemSessao            = errors.New("nenhuma sessão ativa")
)

// UsuarioProvedor é o usuário como o provedor de identidade o conhece.
type UsuarioProvedor struct {
	ID        string
	Email     string
	Metadados domain.Metadados
}

// Sessao é uma sessão emitida pelo provedor.
type Sessao struct {
	AccessToken string
	ExpiraEm    time.Time
	Usuario     UsuarioProvedor
}

// Evento é entregue aos ouvintes registrados com AoMudarEstado.
// Sessao é nil em EventoSaiu.
type Evento struct {
	Tipo   TipoEvento
	Sessao *Sessao
}

// Provedor é o provedor de identidade: verifica credenciais, emite sessões e
// avisa sobre mudanças de autenticação.
type Provedor interface {
	Entrar(ctx context.Context, email, senha string) (*Sessao, error)
	Cadastrar(ctx context.Context, email, senha string, meta domain.Metadados) (*Sessao, error)
	// SessaoAtual devolve (nil, nil) quando não há sessão.
	SessaoAtual(ctx context.Context) (*Sessao, error)
	// UsuarioAtual devolve (nil, nil) quando não há sessão.
	UsuarioAtual(ctx context.Context) (*UsuarioProvedor, error)
	Sair(ctx context.Context) error
	// AoMudarEstado registra um ouvinte e devolve a função que o remove.
	// Ouvintes não podem bloquear.
	AoMudarEstado(fn func(Evento)) (cancelar func())
	AtualizarMetadados(ctx context.Context, meta domain.Metadados) error
}
