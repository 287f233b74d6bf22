package sessao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willjrcristo/gestao-juridica/internal/armazenamento"
	"github.com/willjrcristo/gestao-juridica/internal/domain"
	"github.com/willjrcristo/gestao-juridica/internal/identidade"
	"github.com/willjrcristo/gestao-juridica/internal/notificacao"
	"github.com/willjrcristo/gestao-juridica/internal/repository"
)

// --- Provedor de identidade falso ---

type contaFake struct {
	id    string
	email string
	senha string
	meta  domain.Metadados
}

type provedorFake struct {
	mu       sync.Mutex
	contas   map[string]*contaFake
	sessao   *identidade.Sessao
	ouvintes map[int]func(identidade.Evento)
	proximo  int

	// emitirEventos faz Entrar, Cadastrar e Sair avisarem os ouvintes, como o provedor real.
	emitirEventos bool

	errSessaoAtual  error
	errEntrar       error
	errCadastrar    error
	errSair         error
	errMetadados    error
	errUsuarioAtual error
	semUsuarioAtual bool
	// bloqueio, se definido, segura UsuarioAtual até ser fechado.
	bloqueio chan struct{}
	// bloqueado, se definido, recebe um sinal quando UsuarioAtual passa a esperar o bloqueio.
	bloqueado chan struct{}

	chamadasEntrar       int
	chamadasCadastrar    int
	chamadasSair         int
	chamadasUsuarioAtual int
	metadadosRecebidos   []domain.Metadados
}

func novoProvedorFake() *provedorFake {
	return &provedorFake{
		contas:   make(map[string]*contaFake),
		ouvintes: make(map[int]func(identidade.Evento)),
	}
}

func (p *provedorFake) criarConta(email, senha string, meta domain.Metadados) *contaFake {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.criarContaLocked(email, senha, meta)
}

func (p *provedorFake) criarContaLocked(email, senha string, meta domain.Metadados) *contaFake {
	c := &contaFake{id: fmt.Sprintf("user-%d", len(p.contas)+1), email: email, senha: senha, meta: meta}
	p.contas[email] = c
	return c
}

func (p *provedorFake) abrirSessao(c *contaFake) *identidade.Sessao {
	p.sessao = &identidade.Sessao{
		AccessToken: "token-" + c.id,
		ExpiraEm:    time.Now().Add(time.Hour),
		Usuario:     identidade.UsuarioProvedor{ID: c.id, Email: c.email, Metadados: c.meta},
	}
	s := *p.sessao
	return &s
}

func (p *provedorFake) Entrar(_ context.Context, email, senha string) (*identidade.Sessao, error) {
	p.mu.Lock()
	p.chamadasEntrar++
	if p.errEntrar != nil {
		p.mu.Unlock()
		return nil, p.errEntrar
	}
	c, ok := p.contas[email]
	if !ok {
		p.mu.Unlock()
		return nil, identidade.ErrContaNaoEncontrada
	}
	if c.senha != senha {
		p.mu.Unlock()
		return nil, identidade.ErrCredenciaisInvalidas
	}
	s := p.abrirSessao(c)
	p.mu.Unlock()

	p.emitirSeAtivo(identidade.Evento{Tipo: identidade.EventoEntrou, Sessao: s})
	return s, nil
}

func (p *provedorFake) Cadastrar(_ context.Context, email, senha string, meta domain.Metadados) (*identidade.Sessao, error) {
	p.mu.Lock()
	p.chamadasCadastrar++
	if p.errCadastrar != nil {
		p.mu.Unlock()
		return nil, p.errCadastrar
	}
	if _, ok := p.contas[email]; ok {
		p.mu.Unlock()
		return nil, identidade.ErrEmailJaCadastrado
	}
	c := p.criarContaLocked(email, senha, meta)
	s := p.abrirSessao(c)
	p.mu.Unlock()

	p.emitirSeAtivo(identidade.Evento{Tipo: identidade.EventoEntrou, Sessao: s})
	return s, nil
}

func (p *provedorFake) SessaoAtual(context.Context) (*identidade.Sessao, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.errSessaoAtual != nil {
		return nil, p.errSessaoAtual
	}
	if p.sessao == nil {
		return nil, nil
	}
	s := *p.sessao
	return &s, nil
}

func (p *provedorFake) UsuarioAtual(context.Context) (*identidade.UsuarioProvedor, error) {
	p.mu.Lock()
	bloqueio, bloqueado := p.bloqueio, p.bloqueado
	p.mu.Unlock()
	if bloqueio != nil {
		if bloqueado != nil {
			select {
			case bloqueado <- struct{}{}:
			default:
			}
		}
		<-bloqueio
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.chamadasUsuarioAtual++
	if p.errUsuarioAtual != nil {
		return nil, p.errUsuarioAtual
	}
	if p.semUsuarioAtual || p.sessao == nil {
		return nil, nil
	}
	u := p.sessao.Usuario
	if c, ok := p.contas[u.Email]; ok {
		u.Metadados = c.meta
	}
	return &u, nil
}

func (p *provedorFake) Sair(context.Context) error {
	p.mu.Lock()
	p.chamadasSair++
	if p.errSair != nil {
		p.mu.Unlock()
		return p.errSair
	}
	p.sessao = nil
	p.mu.Unlock()

	p.emitirSeAtivo(identidade.Evento{Tipo: identidade.EventoSaiu})
	return nil
}

func (p *provedorFake) AoMudarEstado(fn func(identidade.Evento)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.proximo
	p.proximo++
	p.ouvintes[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.ouvintes, id)
	}
}

func (p *provedorFake) AtualizarMetadados(_ context.Context, meta domain.Metadados) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metadadosRecebidos = append(p.metadadosRecebidos, meta)
	if p.errMetadados != nil {
		return p.errMetadados
	}
	if p.sessao == nil {
		return identidade.ErrSemSessao
	}
	if c, ok := p.contas[p.sessao.Usuario.Email]; ok && meta.Nome != "" {
		c.meta.Nome = meta.Nome
	}
	return nil
}

func (p *provedorFake) emitirSeAtivo(ev identidade.Evento) {
	p.mu.Lock()
	ativo := p.emitirEventos
	p.mu.Unlock()
	if ativo {
		p.disparar(ev)
	}
}

// disparar entrega ev aos ouvintes, como um aviso fora de banda do provedor.
func (p *provedorFake) disparar(ev identidade.Evento) {
	p.mu.Lock()
	fns := make([]func(identidade.Evento), 0, len(p.ouvintes))
	for _, fn := range p.ouvintes {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// --- Armazenamento remoto falso ---

type dadosFake struct {
	mu          sync.Mutex
	assinaturas []domain.Assinatura
	perfis      map[string]*domain.Perfil
	planos      map[string]float64

	errBuscarAssinatura  error
	errBuscarPerfil      error
	errInserirPerfil     error
	errAtualizarPerfil   error
	errInserirAssinatura error
	errPreco             error

	// perfilConcorrente, se definido, é gravado por "outro cliente" logo antes
	// da próxima inserção de perfil.
	perfilConcorrente *domain.Perfil

	chamadas        int
	perfisInseridos int
}

func novoDadosFake() *dadosFake {
	return &dadosFake{
		perfis: make(map[string]*domain.Perfil),
		planos: map[string]float64{"basico": 97, "profissional": 197, "escritorio": 397},
	}
}

func (d *dadosFake) BuscarAssinatura(_ context.Context, userID string) (*domain.Assinatura, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chamadas++
	if d.errBuscarAssinatura != nil {
		return nil, d.errBuscarAssinatura
	}
	for i := len(d.assinaturas) - 1; i >= 0; i-- {
		if d.assinaturas[i].UserID == userID {
			a := d.assinaturas[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (d *dadosFake) BuscarPerfil(_ context.Context, userID string) (*domain.Perfil, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chamadas++
	if d.errBuscarPerfil != nil {
		return nil, d.errBuscarPerfil
	}
	for _, p := range d.perfis {
		if p.UserID == userID {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (d *dadosFake) InserirPerfil(_ context.Context, p domain.Perfil) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chamadas++
	if d.errInserirPerfil != nil {
		return "", d.errInserirPerfil
	}
	if c := d.perfilConcorrente; c != nil {
		d.perfilConcorrente = nil
		d.perfis[c.ID] = c
	}
	// advogados.user_id é único.
	for _, existente := range d.perfis {
		if existente.UserID == p.UserID {
			return "", repository.ErrPerfilDuplicado
		}
	}
	d.perfisInseridos++
	p.ID = fmt.Sprintf("perfil-%d", d.perfisInseridos)
	d.perfis[p.ID] = &p
	return p.ID, nil
}

func (d *dadosFake) AtualizarPerfil(_ context.Context, id string, campos domain.AtualizacaoPerfil) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chamadas++
	if d.errAtualizarPerfil != nil {
		return d.errAtualizarPerfil
	}
	p, ok := d.perfis[id]
	if !ok {
		return errors.New("perfil não encontrado")
	}
	if campos.Nome != nil {
		p.Nome = *campos.Nome
	}
	if campos.Email != nil {
		p.Email = *campos.Email
	}
	if campos.Telefone != nil {
		p.Telefone = *campos.Telefone
	}
	if campos.OAB != nil {
		p.OAB = *campos.OAB
	}
	if campos.Bio != nil {
		p.Bio = *campos.Bio
	}
	return nil
}

func (d *dadosFake) InserirAssinatura(_ context.Context, a domain.Assinatura) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chamadas++
	if d.errInserirAssinatura != nil {
		return d.errInserirAssinatura
	}
	a.ID = int64(len(d.assinaturas) + 1)
	d.assinaturas = append(d.assinaturas, a)
	return nil
}

func (d *dadosFake) BuscarPrecoPlano(_ context.Context, nome string) (float64, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chamadas++
	if d.errPreco != nil {
		return 0, false, d.errPreco
	}
	preco, ok := d.planos[nome]
	return preco, ok, nil
}

func (d *dadosFake) numChamadas() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chamadas
}

// --- Montagem ---

var instanteTeste = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

type ambiente struct {
	g        *Gerenciador
	provedor *provedorFake
	dados    *dadosFake
	kv       *armazenamento.Memoria
	caixa    *notificacao.Caixa
}

func novoAmbiente(t *testing.T) *ambiente {
	t.Helper()
	return novoAmbienteCom(t, novoProvedorFake(), novoDadosFake(), armazenamento.NewMemoria())
}

func novoAmbienteCom(t *testing.T, p *provedorFake, d *dadosFake, kv *armazenamento.Memoria) *ambiente {
	t.Helper()
	caixa := notificacao.NewCaixa(nil)
	g := New(Dependencias{
		Provedor:      p,
		Dados:         d,
		Armazenamento: kv,
		Notificador:   caixa,
		Navegador:     caixa,
		Admin:         AdminPadrao,
		Agora:         func() time.Time { return instanteTeste },
	})
	t.Cleanup(g.Encerrar)
	return &ambiente{g: g, provedor: p, dados: d, kv: kv, caixa: caixa}
}

// iniciado devolve um ambiente já iniciado sem sessão.
func iniciado(t *testing.T) *ambiente {
	t.Helper()
	a := novoAmbiente(t)
	require.NoError(t, a.g.Iniciar(context.Background()))
	return a
}

func (a *ambiente) snapshot(t *testing.T) *domain.Usuario {
	t.Helper()
	v, ok, err := a.kv.Obter(context.Background(), chaveSnapshot)
	require.NoError(t, err)
	if !ok {
		return nil
	}
	var u domain.Usuario
	require.NoError(t, json.Unmarshal([]byte(v), &u))
	return &u
}

// conferirSnapshot verifica que o snapshot persistido é igual ao usuário em memória.
func (a *ambiente) conferirSnapshot(t *testing.T) {
	t.Helper()
	_, u := a.g.Atual()
	assert.Equal(t, u, a.snapshot(t))
}

func ptr(s string) *string { return &s }
