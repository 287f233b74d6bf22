package sessao

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/willjrcristo/gestao-juridica/internal/domain"
	"github.com/willjrcristo/gestao-juridica/internal/identidade"
)

// buscarUsuario monta o usuário a partir do provedor, da assinatura mais
// recente e do perfil. Devolve nil quando o provedor não tem usuário na sessão.
// Falhas nas consultas de assinatura e perfil contam como "sem dados".
func (g *Gerenciador) buscarUsuario(ctx context.Context, id string) *domain.Usuario {
	up, err := g.provedor.UsuarioAtual(ctx)
	if err != nil {
		g.logger.Warn("Usuário do provedor indisponível", "user_id", id,
			"error", fmt.Errorf("%w: %w", ErrConsultaDegradada, err))
		return nil
	}
	if up == nil {
		return nil
	}

	var (
		assinatura *domain.Assinatura
		perfil     *domain.Perfil
	)
	grupo, gctx := errgroup.WithContext(ctx)
	grupo.Go(func() error {
		a, err := g.dados.BuscarAssinatura(gctx, id)
		if err != nil {
			g.logger.Warn("Falha ao buscar assinatura", "user_id", id,
				"error", fmt.Errorf("%w: %w", ErrConsultaDegradada, err))
			return nil
		}
		assinatura = a
		return nil
	})
	grupo.Go(func() error {
		p, err := g.dados.BuscarPerfil(gctx, id)
		if err != nil {
			g.logger.Warn("Falha ao buscar perfil", "user_id", id,
				"error", fmt.Errorf("%w: %w", ErrConsultaDegradada, err))
			return nil
		}
		perfil = p
		return nil
	})
	_ = grupo.Wait()

	return g.comporUsuario(id, up, assinatura, perfil)
}

func (g *Gerenciador) comporUsuario(id string, up *identidade.UsuarioProvedor, a *domain.Assinatura, p *domain.Perfil) *domain.Usuario {
	u := &domain.Usuario{
		ID:      id,
		Email:   up.Email,
		IsAdmin: g.admin.ehEmail(up.Email),
	}

	var nomePerfil string
	if p != nil {
		nomePerfil = p.Nome
		u.Email = primeiroPreenchido(p.Email, up.Email)
		u.Telefone = p.Telefone
		u.OAB = p.OAB
		u.Bio = p.Bio
		u.ProfileID = p.ID
	}
	u.Nome = primeiroPreenchido(nomePerfil, up.Metadados.Nome, domain.ParteLocalEmail(up.Email), domain.NomePadrao)

	switch {
	case u.IsAdmin:
		u.Plano = domain.PlanoAdministrador
	case a != nil && a.Plano != "":
		u.Plano = a.Plano
	default:
		u.Plano = domain.PlanoTeste
	}
	if a != nil {
		if !u.IsAdmin {
			u.TrialEndsAt = a.DataFim
		}
		u.PaymentMethodID = a.StripePaymentMethodID
	}
	return u
}

// usuarioMinimo é o usuário montado só com o que a sessão do provedor traz.
func usuarioMinimo(up identidade.UsuarioProvedor) *domain.Usuario {
	return &domain.Usuario{
		ID:    up.ID,
		Nome:  primeiroPreenchido(domain.ParteLocalEmail(up.Email), domain.NomePadrao),
		Email: up.Email,
	}
}

func usuarioAdmin(up identidade.UsuarioProvedor) domain.Usuario {
	return domain.Usuario{
		ID:      up.ID,
		Nome:    primeiroPreenchido(up.Metadados.Nome, domain.ParteLocalEmail(up.Email), domain.NomePadrao),
		Email:   up.Email,
		Plano:   domain.PlanoAdministrador,
		IsAdmin: true,
	}
}

func primeiroPreenchido(valores ...string) string {
	for _, v := range valores {
		if v != "" {
			return v
		}
	}
	return ""
}
