package identidade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/willjrcristo/gestao-juridica/internal/armazenamento"
	"github.com/willjrcristo/gestao-juridica/internal/domain"
	"github.com/willjrcristo/gestao-juridica/internal/repository"
)

// chaveToken é onde o token de acesso fica no armazenamento do cliente.
const chaveToken = "auth-token"

const tamanhoMinimoSenha = 6

var _ Provedor = (*Local)(nil)

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ConfigLocal reúne as dependências de um provedor Local.
type ConfigLocal struct {
	Contas        repository.ContaRepository
	Armazenamento armazenamento.Armazenamento
	Segredo       []byte
	Validade      time.Duration
	Logger        *slog.Logger
	// Agora substitui time.Now nos testes.
	Agora func() time.Time
}

// Local é um cliente do provedor de identidade. Cada cliente do frontend tem o
// seu, com o token guardado no próprio armazenamento.
type Local struct {
	contas   repository.ContaRepository
	kv       armazenamento.Armazenamento
	segredo  []byte
	validade time.Duration
	logger   *slog.Logger
	agora    func() time.Time

	mu       sync.Mutex
	ouvintes map[int]func(Evento)
	proximo  int
}

func NewLocal(cfg ConfigLocal) *Local {
	l := &Local{
		contas:   cfg.Contas,
		kv:       cfg.Armazenamento,
		segredo:  cfg.Segredo,
		validade: cfg.Validade,
		logger:   cfg.Logger,
		agora:    cfg.Agora,
		ouvintes: make(map[int]func(Evento)),
	}
	if l.validade <= 0 {
		l.validade = 7 * 24 * time.Hour
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.agora == nil {
		l.agora = time.Now
	}
	return l
}

func (l *Local) Entrar(ctx context.Context, email, senha string) (*Sessao, error) {
	conta, err := l.contas.BuscarContaPorEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("buscar conta: %w", err)
	}
	if conta == nil {
		return nil, ErrContaNaoEncontrada
	}
	if bcrypt.CompareHashAndPassword([]byte(conta.SenhaHash), []byte(senha)) != nil {
		return nil, ErrCredenciaisInvalidas
	}

	s, err := l.abrirSessao(ctx, conta)
	if err != nil {
		return nil, err
	}
	l.emitir(Evento{Tipo: EventoEntrou, Sessao: s})
	return s, nil
}

func (l *Local) Cadastrar(ctx context.Context, email, senha string, meta domain.Metadados) (*Sessao, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrEmailInvalido
	}
	if len(senha) < tamanhoMinimoSenha {
		return nil, ErrSenhaCurta
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("gerar hash da senha: %w", err)
	}
	conta := domain.Conta{
		ID:        uuid.NewString(),
		Email:     email,
		SenhaHash: string(hash),
		Metadados: meta,
		CriadoEm:  l.agora(),
	}
	if err := l.contas.CriarConta(ctx, conta); err != nil {
		if errors.Is(err, repository.ErrEmailDuplicado) {
			return nil, ErrEmailJaCadastrado
		}
		return nil, fmt.Errorf("criar conta: %w", err)
	}
	l.logger.Info("Conta criada no provedor de identidade", "user_id", conta.ID)

	s, err := l.abrirSessao(ctx, &conta)
	if err != nil {
		return nil, err
	}
	l.emitir(Evento{Tipo: EventoEntrou, Sessao: s})
	return s, nil
}

func (l *Local) abrirSessao(ctx context.Context, conta *domain.Conta) (*Sessao, error) {
	agora := l.agora()
	expira := agora.Add(l.validade)
	c := claims{
		Email: conta.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   conta.ID,
			IssuedAt:  jwt.NewNumericDate(agora),
			ExpiresAt: jwt.NewNumericDate(expira),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(l.segredo)
	if err != nil {
		return nil, fmt.Errorf("assinar token: %w", err)
	}
	if err := l.kv.Definir(ctx, chaveToken, token); err != nil {
		return nil, fmt.Errorf("guardar token: %w", err)
	}
	return &Sessao{
		AccessToken: token,
		ExpiraEm:    expira,
		Usuario:     usuarioDaConta(conta),
	}, nil
}

// SessaoAtual valida o token guardado. Tokens inválidos ou vencidos são descartados.
func (l *Local) SessaoAtual(ctx context.Context) (*Sessao, error) {
	token, ok, err := l.kv.Obter(ctx, chaveToken)
	if err != nil {
		return nil, fmt.Errorf("ler token: %w", err)
	}
	if !ok || token == "" {
		return nil, nil
	}

	var c claims
	_, err = jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return l.segredo, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(l.agora))
	if err != nil {
		l.logger.Info("Token de sessão descartado", "error", err)
		return nil, l.descartarToken(ctx)
	}

	conta, err := l.contas.BuscarContaPorID(ctx, c.Subject)
	if err != nil {
		return nil, fmt.Errorf("buscar conta: %w", err)
	}
	if conta == nil {
		return nil, l.descartarToken(ctx)
	}

	var expira time.Time
	if c.ExpiresAt != nil {
		expira = c.ExpiresAt.Time
	}
	return &Sessao{AccessToken: token, ExpiraEm: expira, Usuario: usuarioDaConta(conta)}, nil
}

func (l *Local) descartarToken(ctx context.Context) error {
	if err := l.kv.Remover(ctx, chaveToken); err != nil {
		return fmt.Errorf("remover token: %w", err)
	}
	return nil
}

func (l *Local) UsuarioAtual(ctx context.Context) (*UsuarioProvedor, error) {
	s, err := l.SessaoAtual(ctx)
	if err != nil || s == nil {
		return nil, err
	}
	return &s.Usuario, nil
}

func (l *Local) Sair(ctx context.Context) error {
	if err := l.descartarToken(ctx); err != nil {
		return err
	}
	l.emitir(Evento{Tipo: EventoSaiu})
	return nil
}

// AtualizarMetadados mescla os campos não vazios de meta nos metadados da conta da sessão.
func (l *Local) AtualizarMetadados(ctx context.Context, meta domain.Metadados) error {
	s, err := l.SessaoAtual(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		return ErrSemSessao
	}

	atual := s.Usuario.Metadados
	if meta.Nome != "" {
		atual.Nome = meta.Nome
	}
	if meta.Plano != "" {
		atual.Plano = meta.Plano
	}
	atual.Admin = atual.Admin || meta.Admin
	return l.contas.AtualizarMetadadosConta(ctx, s.Usuario.ID, atual)
}

func (l *Local) AoMudarEstado(fn func(Evento)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.proximo
	l.proximo++
	l.ouvintes[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.ouvintes, id)
	}
}

func (l *Local) emitir(ev Evento) {
	l.mu.Lock()
	fns := make([]func(Evento), 0, len(l.ouvintes))
	for _, fn := range l.ouvintes {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func usuarioDaConta(c *domain.Conta) UsuarioProvedor {
	return UsuarioProvedor{ID: c.ID, Email: c.Email, Metadados: c.Metadados}
}
