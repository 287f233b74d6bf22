package sessao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/willjrcristo/gestao-juridica/internal/domain"
	"github.com/willjrcristo/gestao-juridica/internal/identidade"
	"github.com/willjrcristo/gestao-juridica/internal/notificacao"
	"github.com/willjrcristo/gestao-juridica/internal/repository"
)

func (g *Gerenciador) iniciar(ctx context.Context) error {
	s, err := g.provedor.SessaoAtual(ctx)
	if err != nil {
		// Sem resposta do provedor não dá para saber se a sessão existe:
		// o snapshot fica para a próxima tentativa.
		g.logger.Error("Falha ao consultar a sessão no provedor", "error", err)
		g.mu.Lock()
		g.estado, g.usuario = NaoAutenticado, nil
		g.mu.Unlock()
		contar("iniciar", err)
		return fmt.Errorf("consultar sessão no provedor: %w", err)
	}
	if s == nil {
		g.limparUsuario(ctx)
		contar("iniciar", nil)
		return nil
	}

	if snapshot, ok := g.lerSnapshot(ctx); ok {
		// Usa o snapshot de imediato e reconcilia logo em seguida.
		g.definirUsuario(ctx, *snapshot)
		id := s.Usuario.ID
		bg := context.WithoutCancel(ctx)
		g.depois(func() {
			if u := g.buscarUsuario(bg, id); u != nil {
				g.definirUsuario(bg, *u)
			}
		})
		contar("iniciar", nil)
		return nil
	}

	u := g.buscarUsuario(ctx, s.Usuario.ID)
	if u == nil {
		u = usuarioMinimo(s.Usuario)
	}
	g.definirUsuario(ctx, *u)
	contar("iniciar", nil)
	return nil
}

func (g *Gerenciador) login(ctx context.Context, email, senha string) (*domain.Usuario, error) {
	if g.admin.conferem(email, senha) {
		return g.loginAdmin(ctx, email, senha)
	}

	s, err := g.provedor.Entrar(ctx, email, senha)
	if err != nil {
		g.logger.Warn("Falha no login", "email", email, "error", err)
		g.notificar("Erro no login", "Email ou senha incorretos.", notificacao.SeveridadeDestrutiva)
		contar("login", err)
		return nil, ErrCredenciaisInvalidas
	}

	// O email do administrador tem precedência sobre o par de credenciais.
	if g.admin.ehEmail(s.Usuario.Email) {
		u := usuarioAdmin(s.Usuario)
		g.concluirEntrada(ctx, u, "Login de administrador realizado", "Bem-vindo, administrador!")
		contar("login", nil)
		return &u, nil
	}

	u := g.buscarUsuario(ctx, s.Usuario.ID)
	if u == nil {
		u = usuarioMinimo(s.Usuario)
	}
	g.concluirEntrada(ctx, *u, "Login realizado com sucesso!", fmt.Sprintf("Bem-vindo de volta, %s!", u.Nome))
	contar("login", nil)
	return u, nil
}

func (g *Gerenciador) loginAdmin(ctx context.Context, email, senha string) (*domain.Usuario, error) {
	s, err := g.provedor.Entrar(ctx, email, senha)
	if errors.Is(err, identidade.ErrContaNaoEncontrada) {
		g.logger.Info("Conta de administrador inexistente, criando")
		s, err = g.provedor.Cadastrar(ctx, email, senha, metadadosAdmin(domain.PlanoAdministrador))
	}
	if err != nil {
		g.logger.Error("Falha no login do administrador", "error", err)
		g.notificar("Erro no login", err.Error(), notificacao.SeveridadeDestrutiva)
		contar("login", err)
		return nil, fmt.Errorf("%w: %w", ErrCredenciaisInvalidas, err)
	}

	u := usuarioAdmin(s.Usuario)
	g.concluirEntrada(ctx, u, "Login de administrador realizado", "Bem-vindo, administrador!")
	contar("login", nil)
	return &u, nil
}

func (g *Gerenciador) cadastrar(ctx context.Context, c domain.Cadastro) (*domain.Usuario, error) {
	if g.admin.ehEmail(c.Email) {
		s, err := g.provedor.Cadastrar(ctx, c.Email, c.Senha, metadadosAdmin(c.Nome))
		if err != nil {
			return nil, g.falhaCadastro(c.Email, err)
		}
		u := usuarioAdmin(s.Usuario)
		g.concluirEntrada(ctx, u, "Conta criada com sucesso!", "Bem-vindo, administrador!")
		contar("cadastro", nil)
		return &u, nil
	}

	s, err := g.provedor.Cadastrar(ctx, c.Email, c.Senha, domain.Metadados{Nome: c.Nome})
	if err != nil {
		return nil, g.falhaCadastro(c.Email, err)
	}

	hoje := g.agora()
	trialEndsAt := hoje.AddDate(0, 0, domain.DiasTeste).Format(domain.FormatoData)
	if c.Plano != "" {
		g.registrarAssinaturaTeste(ctx, s.Usuario.ID, c, hoje, trialEndsAt)
	}

	plano := c.Plano
	if plano == "" {
		plano = domain.PlanoTeste
	}
	u := domain.Usuario{
		ID:              s.Usuario.ID,
		Nome:            primeiroPreenchido(c.Nome, domain.ParteLocalEmail(s.Usuario.Email), domain.NomePadrao),
		Email:           s.Usuario.Email,
		Plano:           plano,
		TrialEndsAt:     trialEndsAt,
		PaymentMethodID: c.PaymentMethodID,
	}
	g.concluirEntrada(ctx, u, "Conta criada com sucesso!",
		fmt.Sprintf("Seu período de teste de %d dias começou.", domain.DiasTeste))
	contar("cadastro", nil)
	return &u, nil
}

// registrarAssinaturaTeste grava a assinatura em período de teste. Falhas não
// impedem o cadastro.
func (g *Gerenciador) registrarAssinaturaTeste(ctx context.Context, userID string, c domain.Cadastro, inicio time.Time, fim string) {
	preco, ok, err := g.dados.BuscarPrecoPlano(ctx, c.Plano)
	if err != nil {
		g.logger.Warn("Preço do plano indisponível", "plano", c.Plano,
			"error", fmt.Errorf("%w: %w", ErrConsultaDegradada, err))
	}
	if !ok {
		preco = 0
	}

	a := domain.Assinatura{
		UserID:                userID,
		Plano:                 c.Plano,
		DataInicio:            inicio.Format(domain.FormatoData),
		DataFim:               fim,
		Preco:                 preco,
		Status:                domain.StatusTeste,
		StripePaymentMethodID: c.PaymentMethodID,
	}
	if err := g.dados.InserirAssinatura(ctx, a); err != nil {
		g.logger.Error("Falha ao registrar a assinatura de teste", "user_id", userID,
			"error", fmt.Errorf("%w: %w", ErrEscritaSecundaria, err))
	}
}

func (g *Gerenciador) falhaCadastro(email string, err error) error {
	g.logger.Error("Falha no cadastro", "email", email, "error", err)
	g.notificar("Erro no cadastro", err.Error(), notificacao.SeveridadeDestrutiva)
	contar("cadastro", err)
	return fmt.Errorf("%w: %w", ErrCriacaoConta, err)
}

func (g *Gerenciador) concluirEntrada(ctx context.Context, u domain.Usuario, titulo, descricao string) {
	g.definirUsuario(ctx, u)
	g.notificar(titulo, descricao, notificacao.SeveridadePadrao)
	g.navegador.IrPara(RotaAutenticada)
}

func (g *Gerenciador) logout(ctx context.Context) {
	if err := g.provedor.Sair(ctx); err != nil {
		g.logger.Warn("Falha ao sair no provedor, seguindo com o logout", "error", err)
	}
	g.limparUsuario(ctx)
	g.notificar("Logout realizado", "Você saiu da sua conta.", notificacao.SeveridadePadrao)
	g.navegador.IrPara(RotaPublica)
	contar("logout", nil)
}

func (g *Gerenciador) aplicarEvento(ev identidade.Evento) {
	ctx := context.Background()
	switch ev.Tipo {
	case identidade.EventoEntrou:
		if ev.Sessao == nil {
			return
		}
		u := g.buscarUsuario(ctx, ev.Sessao.Usuario.ID)
		if u == nil {
			u = usuarioMinimo(ev.Sessao.Usuario)
		}
		g.definirUsuario(ctx, *u)
		contar("evento_entrou", nil)
	case identidade.EventoSaiu:
		g.limparUsuario(ctx)
		contar("evento_saiu", nil)
	default:
		g.logger.Debug("Evento do provedor ignorado", "tipo", ev.Tipo)
	}
}

func (g *Gerenciador) atualizarDados(ctx context.Context) {
	atual := g.usuarioAtual()
	if atual == nil || atual.ID == "" {
		transicoesTotal.WithLabelValues("atualizar", "ignorada").Inc()
		return
	}

	u := g.buscarUsuario(ctx, atual.ID)
	if u == nil {
		g.logger.Warn("Não foi possível atualizar os dados do usuário", "user_id", atual.ID)
		contar("atualizar", ErrConsultaDegradada)
		return
	}
	g.definirUsuario(ctx, *u)
	contar("atualizar", nil)
}

func (g *Gerenciador) atualizarPerfil(ctx context.Context, a domain.AtualizacaoPerfil) (*domain.Usuario, error) {
	atual := g.usuarioAtual()
	if atual == nil {
		contar("perfil", ErrNaoAutenticado)
		return nil, ErrNaoAutenticado
	}

	profileID, err := g.gravarPerfil(ctx, atual, a)
	if err != nil {
		g.logger.Error("Falha ao gravar o perfil", "user_id", atual.ID, "error", err)
		g.notificar("Erro ao atualizar perfil", "Não foi possível salvar suas informações.", notificacao.SeveridadeDestrutiva)
		contar("perfil", err)
		return nil, fmt.Errorf("atualizar perfil: %w", err)
	}

	if a.Nome != nil {
		if err := g.provedor.AtualizarMetadados(ctx, domain.Metadados{Nome: *a.Nome}); err != nil {
			g.logger.Warn("Falha ao sincronizar o nome no provedor", "user_id", atual.ID,
				"error", fmt.Errorf("%w: %w", ErrEscritaSecundaria, err))
		}
	}

	novo := a.Aplicar(*atual)
	novo.ProfileID = profileID
	g.definirUsuario(ctx, novo)
	g.notificar("Perfil atualizado", "Suas informações foram salvas.", notificacao.SeveridadePadrao)
	contar("perfil", nil)
	return &novo, nil
}

// gravarPerfil atualiza o perfil do usuário ou cria um quando não existe, e
// devolve o id do registro. Sem profileId em memória, o perfil é procurado
// antes: outro cliente do mesmo usuário pode tê-lo criado.
func (g *Gerenciador) gravarPerfil(ctx context.Context, atual *domain.Usuario, a domain.AtualizacaoPerfil) (string, error) {
	id := atual.ProfileID
	if id == "" {
		existente, err := g.dados.BuscarPerfil(ctx, atual.ID)
		if err != nil {
			return "", fmt.Errorf("buscar perfil: %w", err)
		}
		if existente != nil {
			id = existente.ID
		}
	}
	if id != "" {
		return id, g.dados.AtualizarPerfil(ctx, id, a)
	}

	id, err := g.dados.InserirPerfil(ctx, perfilDe(atual.ID, a))
	if !errors.Is(err, repository.ErrPerfilDuplicado) {
		return id, err
	}
	// Criado por outro cliente entre a busca e a inserção.
	existente, errBusca := g.dados.BuscarPerfil(ctx, atual.ID)
	if errBusca != nil || existente == nil {
		return "", err
	}
	return existente.ID, g.dados.AtualizarPerfil(ctx, existente.ID, a)
}

func perfilDe(userID string, a domain.AtualizacaoPerfil) domain.Perfil {
	p := domain.Perfil{UserID: userID}
	if a.Nome != nil {
		p.Nome = *a.Nome
	}
	if a.Email != nil {
		p.Email = *a.Email
	}
	if a.Telefone != nil {
		p.Telefone = *a.Telefone
	}
	if a.OAB != nil {
		p.OAB = *a.OAB
	}
	if a.Bio != nil {
		p.Bio = *a.Bio
	}
	return p
}

func metadadosAdmin(nome string) domain.Metadados {
	return domain.Metadados{Nome: nome, Admin: true, Plano: domain.PlanoAdministrador}
}
