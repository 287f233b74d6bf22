package notificacao

import (
	"context"
	"log/slog"
	"sync"
)

// Severidade define o estilo do aviso exibido no frontend.
type Severidade string

const (
	SeveridadePadrao     Severidade = "default"
	SeveridadeDestrutiva Severidade = "destructive"
)

// Notificacao é um aviso (toast) para o usuário.
type Notificacao struct {
	Titulo     string     `json:"title"`
	Descricao  string     `json:"description"`
	Severidade Severidade `json:"variant"`
}

// Notificador recebe avisos para o usuário. Não pode bloquear.
type Notificador interface {
	Notificar(n Notificacao)
}

// Navegador recebe pedidos de redirecionamento de rota. Não pode bloquear.
type Navegador interface {
	IrPara(rota string)
}

// Caixa acumula os avisos e o último redirecionamento de um cliente até que a
// resposta HTTP os entregue.
type Caixa struct {
	mu           sync.Mutex
	notificacoes []Notificacao
	rota         string
	logger       *slog.Logger
}

func NewCaixa(logger *slog.Logger) *Caixa {
	if logger == nil {
		logger = slog.Default()
	}
	return &Caixa{logger: logger}
}

func (c *Caixa) Notificar(n Notificacao) {
	nivel := slog.LevelInfo
	if n.Severidade == SeveridadeDestrutiva {
		nivel = slog.LevelWarn
	}
	c.logger.Log(context.Background(), nivel, "Notificação", "titulo", n.Titulo, "descricao", n.Descricao)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.notificacoes = append(c.notificacoes, n)
}

func (c *Caixa) IrPara(rota string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rota = rota
}

// Retirar devolve e esvazia o conteúdo da caixa.
func (c *Caixa) Retirar() ([]Notificacao, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ns, rota := c.notificacoes, c.rota
	c.notificacoes, c.rota = nil, ""
	return ns, rota
}
