package sessao

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/willjrcristo/gestao-juridica/internal/armazenamento"
	"github.com/willjrcristo/gestao-juridica/internal/domain"
	"github.com/willjrcristo/gestao-juridica/internal/identidade"
	"github.com/willjrcristo/gestao-juridica/internal/notificacao"
)

// Dados é o subconjunto do armazenamento remoto usado pela sessão.
// Buscas sem resultado devolvem (nil, nil).
type Dados interface {
	BuscarAssinatura(ctx context.Context, userID string) (*domain.Assinatura, error)
	BuscarPerfil(ctx context.Context, userID string) (*domain.Perfil, error)
	InserirPerfil(ctx context.Context, perfil domain.Perfil) (string, error)
	AtualizarPerfil(ctx context.Context, id string, campos domain.AtualizacaoPerfil) error
	InserirAssinatura(ctx context.Context, a domain.Assinatura) error
	BuscarPrecoPlano(ctx context.Context, nome string) (float64, bool, error)
}

// Dependencias são os colaboradores de um Gerenciador.
type Dependencias struct {
	Provedor      identidade.Provedor
	Dados         Dados
	Armazenamento armazenamento.Armazenamento
	Notificador   notificacao.Notificador
	Navegador     notificacao.Navegador
	Admin         CredenciaisAdmin
	Logger        *slog.Logger
	// Agora substitui time.Now nos testes.
	Agora func() time.Time
}

// Gerenciador é o dono do usuário atual de um cliente.
//
// Comandos (Login, Logout, ...) e eventos do provedor de identidade são
// aplicados por um único goroutine, na ordem em que chegam; eventos já
// entregues são aplicados antes do próximo comando. O snapshot local e o
// usuário em memória são sempre gravados juntos.
type Gerenciador struct {
	provedor    identidade.Provedor
	dados       Dados
	kv          armazenamento.Armazenamento
	notificador notificacao.Notificador
	navegador   notificacao.Navegador
	admin       CredenciaisAdmin
	logger      *slog.Logger
	agora       func() time.Time

	mu      sync.RWMutex
	estado  Estado
	usuario *domain.Usuario

	comandos  chan func()
	pendentes []func()

	// Fila de eventos do provedor, sem limite, aplicada na ordem de chegada.
	muEventos sync.Mutex
	eventos   []identidade.Evento
	avisoEv   chan struct{}

	parar           chan struct{}
	encerrado       chan struct{}
	pararOnce       sync.Once
	cancelarOuvinte func()
}

// New cria o gerenciador no estado Carregando e passa a ouvir o provedor.
// Iniciar deve ser chamado em seguida.
func New(d Dependencias) *Gerenciador {
	g := &Gerenciador{
		provedor:    d.Provedor,
		dados:       d.Dados,
		kv:          d.Armazenamento,
		notificador: d.Notificador,
		navegador:   d.Navegador,
		admin:       d.Admin,
		logger:      d.Logger,
		agora:       d.Agora,
		estado:      Carregando,
		comandos:    make(chan func()),
		avisoEv:     make(chan struct{}, 1),
		parar:       make(chan struct{}),
		encerrado:   make(chan struct{}),
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.agora == nil {
		g.agora = time.Now
	}
	if g.notificador == nil {
		g.notificador = notificacao.NewCaixa(g.logger)
	}
	if g.navegador == nil {
		g.navegador = notificacao.NewCaixa(g.logger)
	}

	go g.executar()
	g.cancelarOuvinte = g.provedor.AoMudarEstado(g.receberEvento)
	return g
}

func (g *Gerenciador) executar() {
	defer close(g.encerrado)
	for {
		select {
		case <-g.parar:
			return
		case <-g.avisoEv:
			g.drenarEventos()
		case cmd := <-g.comandos:
			g.drenarEventos()
			cmd()
		}
		g.executarPendentes()
	}
}

func (g *Gerenciador) drenarEventos() {
	for {
		g.muEventos.Lock()
		if len(g.eventos) == 0 {
			g.muEventos.Unlock()
			return
		}
		ev := g.eventos[0]
		g.eventos = g.eventos[1:]
		g.muEventos.Unlock()

		g.aplicarEvento(ev)
		g.executarPendentes()
	}
}

func (g *Gerenciador) executarPendentes() {
	for len(g.pendentes) > 0 {
		fn := g.pendentes[0]
		g.pendentes = g.pendentes[1:]
		fn()
	}
}

// depois agenda fn para logo depois do comando atual. Só pode ser chamado
// dentro do goroutine do gerenciador.
func (g *Gerenciador) depois(fn func()) {
	g.pendentes = append(g.pendentes, fn)
}

// receberEvento é o ouvinte registrado no provedor. Pode ser chamado de
// dentro de um comando, então nunca bloqueia: só enfileira e avisa o goroutine.
func (g *Gerenciador) receberEvento(ev identidade.Evento) {
	g.muEventos.Lock()
	g.eventos = append(g.eventos, ev)
	g.muEventos.Unlock()

	select {
	case g.avisoEv <- struct{}{}:
	default:
		// Já há um aviso pendente; ele cobre este evento.
	}
}

func (g *Gerenciador) submeter(ctx context.Context, fn func()) error {
	feito := make(chan struct{})
	cmd := func() {
		defer close(feito)
		fn()
	}
	select {
	case g.comandos <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-g.encerrado:
		return ErrEncerrado
	}
	<-feito
	return nil
}

// Atual devolve o estado e uma cópia do usuário atual (nil se não autenticado).
func (g *Gerenciador) Atual() (Estado, *domain.Usuario) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.usuario == nil {
		return g.estado, nil
	}
	u := *g.usuario
	return g.estado, &u
}

// Iniciar restaura a sessão existente no provedor, se houver. Se o provedor
// não puder ser consultado, o estado fica NaoAutenticado, o snapshot é mantido
// e o erro é devolvido.
func (g *Gerenciador) Iniciar(ctx context.Context) error {
	var err error
	if e := g.submeter(ctx, func() { err = g.iniciar(ctx) }); e != nil {
		return e
	}
	return err
}

// Login autentica com email e senha.
func (g *Gerenciador) Login(ctx context.Context, email, senha string) (*domain.Usuario, error) {
	var u *domain.Usuario
	var err error
	if e := g.submeter(ctx, func() { u, err = g.login(ctx, email, senha) }); e != nil {
		return nil, e
	}
	return u, err
}

// Cadastrar cria a conta e autentica o novo usuário.
func (g *Gerenciador) Cadastrar(ctx context.Context, c domain.Cadastro) (*domain.Usuario, error) {
	var u *domain.Usuario
	var err error
	if e := g.submeter(ctx, func() { u, err = g.cadastrar(ctx, c) }); e != nil {
		return nil, e
	}
	return u, err
}

// Logout encerra a sessão. A saída no provedor é feita em regime de melhor esforço.
func (g *Gerenciador) Logout(ctx context.Context) error {
	return g.submeter(ctx, func() { g.logout(ctx) })
}

// AtualizarDadosUsuario recarrega o usuário a partir do provedor e dos registros
// remotos. Falhas são apenas registradas no log.
func (g *Gerenciador) AtualizarDadosUsuario(ctx context.Context) error {
	return g.submeter(ctx, func() { g.atualizarDados(ctx) })
}

// AtualizarPerfil grava os campos informados no perfil e no usuário atual.
func (g *Gerenciador) AtualizarPerfil(ctx context.Context, a domain.AtualizacaoPerfil) (*domain.Usuario, error) {
	var u *domain.Usuario
	var err error
	if e := g.submeter(ctx, func() { u, err = g.atualizarPerfil(ctx, a) }); e != nil {
		return nil, e
	}
	return u, err
}

// Sincronizar retorna quando tudo o que foi submetido ou entregue antes da
// chamada já foi aplicado.
func (g *Gerenciador) Sincronizar(ctx context.Context) error {
	return g.submeter(ctx, func() {})
}

// Encerrar para o goroutine e deixa de ouvir o provedor.
func (g *Gerenciador) Encerrar() {
	g.pararOnce.Do(func() {
		if g.cancelarOuvinte != nil {
			g.cancelarOuvinte()
		}
		close(g.parar)
	})
	<-g.encerrado
}

// definirUsuario grava o snapshot e o usuário em memória no mesmo passo.
func (g *Gerenciador) definirUsuario(ctx context.Context, u domain.Usuario) {
	dados, err := json.Marshal(u)
	if err != nil {
		g.logger.Error("Falha ao serializar o snapshot do usuário", "error", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		if err := g.kv.Definir(ctx, chaveSnapshot, string(dados)); err != nil {
			g.logger.Error("Falha ao gravar o snapshot do usuário", "user_id", u.ID, "error", err)
		}
	}
	g.estado = Autenticado
	g.usuario = &u
}

// limparUsuario remove o snapshot e o usuário em memória no mesmo passo.
func (g *Gerenciador) limparUsuario(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.kv.Remover(ctx, chaveSnapshot); err != nil {
		g.logger.Error("Falha ao remover o snapshot do usuário", "error", err)
	}
	g.estado = NaoAutenticado
	g.usuario = nil
}

func (g *Gerenciador) lerSnapshot(ctx context.Context) (*domain.Usuario, bool) {
	valor, ok, err := g.kv.Obter(ctx, chaveSnapshot)
	if err != nil {
		g.logger.Warn("Falha ao ler o snapshot do usuário", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var u domain.Usuario
	if err := json.Unmarshal([]byte(valor), &u); err != nil || u.ID == "" {
		g.logger.Warn("Snapshot do usuário inválido, ignorando", "error", err)
		return nil, false
	}
	return &u, true
}

func (g *Gerenciador) usuarioAtual() *domain.Usuario {
	_, u := g.Atual()
	return u
}

func (g *Gerenciador) notificar(titulo, descricao string, severidade notificacao.Severidade) {
	g.notificador.Notificar(notificacao.Notificacao{
		Titulo:     titulo,
		Descricao:  descricao,
		Severidade: severidade,
	})
}
