package sessao

import (
	"context"
	"log/slog"
	"sync"

	"github.com/willjrcristo/gestao-juridica/internal/notificacao"
)

// Fabrica monta o gerenciador e a caixa de avisos de um cliente.
type Fabrica func(clienteID string) (*Gerenciador, *notificacao.Caixa)

type cliente struct {
	gerenciador *Gerenciador
	caixa       *notificacao.Caixa
	pronto      chan struct{}
	err         error
}

// Registro guarda um Gerenciador por cliente do frontend. O gerenciador é
// criado e iniciado no primeiro acesso do cliente.
//
// TODO: encerrar e remover gerenciadores de clientes ociosos; hoje ficam em
// memória até o processo terminar.
type Registro struct {
	fabrica Fabrica
	logger  *slog.Logger

	mu       sync.Mutex
	clientes map[string]*cliente
}

func NewRegistro(fabrica Fabrica, logger *slog.Logger) *Registro {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registro{
		fabrica:  fabrica,
		logger:   logger,
		clientes: make(map[string]*cliente),
	}
}

// Obter devolve o gerenciador do cliente, criando e iniciando-o se preciso.
func (r *Registro) Obter(ctx context.Context, clienteID string) (*Gerenciador, *notificacao.Caixa, error) {
	r.mu.Lock()
	c, ok := r.clientes[clienteID]
	if !ok {
		g, caixa := r.fabrica(clienteID)
		c = &cliente{gerenciador: g, caixa: caixa, pronto: make(chan struct{})}
		r.clientes[clienteID] = c
	}
	r.mu.Unlock()

	if !ok {
		c.err = c.gerenciador.Iniciar(ctx)
		if c.err != nil {
			r.logger.Warn("Falha ao iniciar a sessão do cliente", "cliente_id", clienteID, "error", c.err)
			r.mu.Lock()
			delete(r.clientes, clienteID)
			r.mu.Unlock()
			c.gerenciador.Encerrar()
		}
		close(c.pronto)
	}

	select {
	case <-c.pronto:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
	if c.err != nil {
		return nil, nil, c.err
	}
	return c.gerenciador, c.caixa, nil
}

// Quantidade devolve o número de clientes com sessão carregada.
func (r *Registro) Quantidade() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clientes)
}

// Encerrar para todos os gerenciadores.
func (r *Registro) Encerrar() {
	r.mu.Lock()
	clientes := r.clientes
	r.clientes = make(map[string]*cliente)
	r.mu.Unlock()

	for _, c := range clientes {
		<-c.pronto
		c.gerenciador.Encerrar()
	}
}
