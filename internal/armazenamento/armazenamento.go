// Package armazenamento implementa o armazenamento chave-valor local usado para
// guardar o snapshot do usuário e o token do provedor de identidade.
package armazenamento

import "context"

// Armazenamento é um armazenamento chave-valor persistente.
// Obter devolve ok=false quando a chave não existe.
type Armazenamento interface {
	Obter(ctx context.Context, chave string) (valor string, ok bool, err error)
	Definir(ctx context.Context, chave, valor string) error
	Remover(ctx context.Context, chave string) error
}

type prefixado struct {
	base    Armazenamento
	prefixo string
}

// ComPrefixo isola as chaves de um cliente dentro de um armazenamento compartilhado.
func ComPrefixo(base Armazenamento, prefixo string) Armazenamento {
	return &prefixado{base: base, prefixo: prefixo + ":"}
}

func (p *prefixado) Obter(ctx context.Context, chave string) (string, bool, error) {
	return p.base.Obter(ctx, p.prefixo+chave)
}

func (p *prefixado) Definir(ctx context.Context, chave, valor string) error {
	return p.base.Definir(ctx, p.prefixo+chave, valor)
}

func (p *prefixado) Remover(ctx context.Context, chave string) error {
	return p.base.Remover(ctx, p.prefixo+chave)
}
