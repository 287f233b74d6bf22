package armazenamento

import (
	"context"
	"sync"
)

// Memoria guarda os valores em memória. Usado em desenvolvimento e nos testes.
type Memoria struct {
	mu      sync.RWMutex
	valores map[string]string
}

func NewMemoria() *Memoria {
	return &Memoria{valores: make(map[string]string)}
}

func (m *Memoria) Obter(_ context.Context, chave string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.valores[chave]
	return v, ok, nil
}

func (m *Memoria) Definir(_ context.Context, chave, valor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.valores[chave] = valor
	return nil
}

func (m *Memoria) Remover(_ context.Context, chave string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.valores, chave)
	return nil
}
