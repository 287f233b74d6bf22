package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/willjrcristo/gestao-juridica/internal/domain"
	"github.com/willjrcristo/gestao-juridica/internal/notificacao"
	"github.com/willjrcristo/gestao-juridica/internal/service"
	"github.com/willjrcristo/gestao-juridica/internal/sessao"
)

// Sessao é o que o handler usa do gerenciador de sessão de um cliente.
type Sessao interface {
	Atual() (sessao.Estado, *domain.Usuario)
	Login(ctx context.Context, email, senha string) (*domain.Usuario, error)
	Cadastrar(ctx context.Context, c domain.Cadastro) (*domain.Usuario, error)
	Logout(ctx context.Context) error
	AtualizarDadosUsuario(ctx context.Context) error
	AtualizarPerfil(ctx context.Context, a domain.AtualizacaoPerfil) (*domain.Usuario, error)
}

// Avisos entrega os avisos e o redirecionamento acumulados desde a última resposta.
type Avisos interface {
	Retirar() ([]notificacao.Notificacao, string)
}

// ObterSessao devolve a sessão do cliente identificado pelo cookie.
type ObterSessao func(ctx context.Context, clienteID string) (Sessao, Avisos, error)

// AssinaturaService é a interface do serviço de assinaturas usada pelos handlers.
type AssinaturaService interface {
	CriarSessaoCheckout(ctx context.Context, c service.Cliente, plano string) (string, error)
	ProcessarWebhook(ctx context.Context, payload []byte, assinatura string) error
}

// CredenciaisLogin é o corpo de POST /sessao/login.
type CredenciaisLogin struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// PedidoCheckout é o corpo de POST /assinaturas/checkout.
type PedidoCheckout struct {
	Plano string `json:"plano"`
}

// RespostaSessao é devolvida por todas as rotas de /sessao.
type RespostaSessao struct {
	Estado       string                    `json:"estado"`
	Usuario      *domain.Usuario           `json:"usuario"`
	Notificacoes []notificacao.Notificacao `json:"notificacoes"`
	Redirecionar string                    `json:"redirecionar,omitempty"`
}

// RespostaErro é o corpo das respostas de erro.
type RespostaErro struct {
	Erro         string                    `json:"error"`
	Notificacoes []notificacao.Notificacao `json:"notificacoes,omitempty"`
}

// SessaoHandler lida com as rotas de /sessao.
type SessaoHandler struct {
	obter ObterSessao
}

func NewSessaoHandler(obter ObterSessao) *SessaoHandler {
	return &SessaoHandler{
		obter: obter,
	}
}

// Routes define e retorna todas as rotas que este handler gerencia.
func (h *SessaoHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(ClienteID)

	r.Get("/", h.Estado)                // GET /sessao
	r.Post("/login", h.Login)           // POST /sessao/login
	r.Post("/cadastro", h.Cadastrar)    // POST /sessao/cadastro
	r.Post("/logout", h.Logout)         // POST /sessao/logout
	r.Post("/atualizar", h.Atualizar)   // POST /sessao/atualizar
	r.Put("/perfil", h.AtualizarPerfil) // PUT /sessao/perfil

	return r
}

// sessaoDoCliente resolve a sessão ou já responde com erro.
func (h *SessaoHandler) sessaoDoCliente(w http.ResponseWriter, r *http.Request) (Sessao, Avisos, bool) {
	s, avisos, err := h.obter(r.Context(), clienteIDDe(r.Context()))
	if err != nil {
		slog.Error("Falha ao carregar a sessão do cliente", "error", err)
		respondWithError(w, http.StatusServiceUnavailable, "Sessão indisponível")
		return nil, nil, false
	}
	return s, avisos, true
}

// @Summary      Estado da sessão
// @Description  Retorna o estado da sessão e o usuário autenticado, se houver
// @Tags         sessao
// @Produce      json
// @Success      200  {object}  RespostaSessao
// @Failure      503  {object}  RespostaErro
// @Router       /sessao [get]
func (h *SessaoHandler) Estado(w http.ResponseWriter, r *http.Request) {
	s, avisos, ok := h.sessaoDoCliente(w, r)
	if !ok {
		return
	}
	respondWithSessao(w, http.StatusOK, s, avisos)
}

// @Summary      Login
// @Description  Autentica com email e senha. O par de credenciais do administrador cria a conta se preciso
// @Tags         sessao
// @Accept       json
// @Produce      json
// @Param        credenciais  body      CredenciaisLogin  true  "Email e senha"
// @Success      200          {object}  RespostaSessao
// @Failure      400          {object}  RespostaErro
// @Failure      401          {object}  RespostaErro
// @Router       /sessao/login [post]
func (h *SessaoHandler) Login(w http.ResponseWriter, r *http.Request) {
	var c CredenciaisLogin
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Email == "" || c.Senha == "" {
		respondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	s, avisos, ok := h.sessaoDoCliente(w, r)
	if !ok {
		return
	}

	if _, err := s.Login(r.Context(), c.Email, c.Senha); err != nil {
		respondWithFalha(w, err, avisos)
		return
	}
	respondWithSessao(w, http.StatusOK, s, avisos)
}

// @Summary      Cadastro
// @Description  Cria a conta, inicia o período de teste de 14 dias e autentica o novo usuário
// @Tags         sessao
// @Accept       json
// @Produce      json
// @Param        cadastro  body      domain.Cadastro  true  "Dados do cadastro"
// @Success      201       {object}  RespostaSessao
// @Failure      400       {object}  RespostaErro
// @Failure      422       {object}  RespostaErro
// @Router       /sessao/cadastro [post]
func (h *SessaoHandler) Cadastrar(w http.ResponseWriter, r *http.Request) {
	var c domain.Cadastro
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Email == "" || c.Senha == "" {
		respondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	s, avisos, ok := h.sessaoDoCliente(w, r)
	if !ok {
		return
	}

	if _, err := s.Cadastrar(r.Context(), c); err != nil {
		respondWithFalha(w, err, avisos)
		return
	}
	respondWithSessao(w, http.StatusCreated, s, avisos)
}

// @Summary      Logout
// @Description  Encerra a sessão do cliente
// @Tags         sessao
// @Produce      json
// @Success      200  {object}  RespostaSessao
// @Router       /sessao/logout [post]
func (h *SessaoHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s, avisos, ok := h.sessaoDoCliente(w, r)
	if !ok {
		return
	}
	if err := s.Logout(r.Context()); err != nil {
		respondWithFalha(w, err, avisos)
		return
	}
	respondWithSessao(w, http.StatusOK, s, avisos)
}

// @Summary      Recarrega o usuário
// @Description  Recarrega plano, período de teste e perfil a partir dos registros remotos
// @Tags         sessao
// @Produce      json
// @Success      200  {object}  RespostaSessao
// @Router       /sessao/atualizar [post]
func (h *SessaoHandler) Atualizar(w http.ResponseWriter, r *http.Request) {
	s, avisos, ok := h.sessaoDoCliente(w, r)
	if !ok {
		return
	}
	if err := s.AtualizarDadosUsuario(r.Context()); err != nil {
		respondWithFalha(w, err, avisos)
		return
	}
	respondWithSessao(w, http.StatusOK, s, avisos)
}

// @Summary      Atualiza o perfil
// @Description  Grava os campos informados no perfil do advogado. Campos ausentes não mudam
// @Tags         sessao
// @Accept       json
// @Produce      json
// @Param        perfil  body      domain.AtualizacaoPerfil  true  "Campos a alterar"
// @Success      200     {object}  RespostaSessao
// @Failure      400     {object}  RespostaErro
// @Failure      401     {object}  RespostaErro
// @Failure      500     {object}  RespostaErro
// @Router       /sessao/perfil [put]
func (h *SessaoHandler) AtualizarPerfil(w http.ResponseWriter, r *http.Request) {
	var a domain.AtualizacaoPerfil
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		respondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	if a.Vazia() {
		respondWithError(w, http.StatusBadRequest, "Nenhum campo informado")
		return
	}
	s, avisos, ok := h.sessaoDoCliente(w, r)
	if !ok {
		return
	}

	if _, err := s.AtualizarPerfil(r.Context(), a); err != nil {
		respondWithFalha(w, err, avisos)
		return
	}
	respondWithSessao(w, http.StatusOK, s, avisos)
}

// AssinaturaHandler lida com a contratação de planos.
type AssinaturaHandler struct {
	obter   ObterSessao
	service AssinaturaService
}

func NewAssinaturaHandler(obter ObterSessao, s AssinaturaService) *AssinaturaHandler {
	return &AssinaturaHandler{
		obter:   obter,
		service: s,
	}
}

func (h *AssinaturaHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(ClienteID)

	r.Post("/checkout", h.CriarSessaoCheckout) // POST /assinaturas/checkout

	return r
}

// @Summary      Cria uma sessão de checkout na Stripe
// @Description  Gera uma URL de pagamento para o usuário autenticado contratar um plano
// @Tags         assinaturas
// @Accept       json
// @Produce      json
// @Param        pedido  body      PedidoCheckout  true  "Plano desejado"
// @Success      200     {object}  map[string]string
// @Failure      400     {object}  RespostaErro
// @Failure      401     {object}  RespostaErro
// @Failure      409     {object}  RespostaErro
// @Failure      500     {object}  RespostaErro
// @Router       /assinaturas/checkout [post]
func (h *AssinaturaHandler) CriarSessaoCheckout(w http.ResponseWriter, r *http.Request) {
	var p PedidoCheckout
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Plano == "" {
		respondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	s, _, err := h.obter(r.Context(), clienteIDDe(r.Context()))
	if err != nil {
		slog.Error("Falha ao carregar a sessão do cliente", "error", err)
		respondWithError(w, http.StatusServiceUnavailable, "Sessão indisponível")
		return
	}
	// Só o usuário autenticado contrata planos.
	_, u := s.Atual()
	if u == nil {
		respondWithError(w, http.StatusUnauthorized, sessao.ErrNaoAutenticado.Error())
		return
	}

	checkoutURL, err := h.service.CriarSessaoCheckout(r.Context(),
		service.Cliente{UserID: u.ID, Nome: u.Nome, Email: u.Email}, p.Plano)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanoInvalido):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAssinaturaJaAtiva):
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Erro ao criar sessão de checkout")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"checkout_url": checkoutURL})
}

type StripeWebhookHandler struct {
	service AssinaturaService
}

func NewStripeWebhookHandler(s AssinaturaService) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		service: s,
	}
}

// HandleStripeWebhook é o handler para a rota que recebe os eventos da Stripe.
func (h *StripeWebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536) // Limite de 64KB
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	// A verificação da assinatura usa o corpo exatamente como chegou.
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("Erro ao ler o corpo do webhook", "error", err)
		respondWithError(w, http.StatusServiceUnavailable, "Erro ao ler corpo da requisição")
		return
	}

	// A Stripe envia a assinatura no cabeçalho Stripe-Signature.
	signature := r.Header.Get("Stripe-Signature")

	err = h.service.ProcessarWebhook(r.Context(), payload, signature)
	if err != nil {
		// Assinatura inválida é erro do chamador; o resto é nosso e a Stripe tenta de novo.
		if errors.Is(err, service.ErrWebhookStripe) {
			respondWithError(w, http.StatusBadRequest, "Falha na verificação da assinatura do webhook")
		} else {
			respondWithError(w, http.StatusInternalServerError, "Erro interno ao processar webhook")
		}
		return
	}

	// A Stripe só precisa saber que o evento foi recebido.
	w.WriteHeader(http.StatusOK)
}

// --- FUNÇÕES AUXILIARES ---

func respondWithSessao(w http.ResponseWriter, code int, s Sessao, avisos Avisos) {
	estado, u := s.Atual()
	ns, rota := avisos.Retirar()
	if ns == nil {
		ns = []notificacao.Notificacao{}
	}
	respondWithJSON(w, code, RespostaSessao{
		Estado:       estado.String(),
		Usuario:      u,
		Notificacoes: ns,
		Redirecionar: rota,
	})
}

// respondWithFalha traduz os erros da sessão para o status HTTP.
func respondWithFalha(w http.ResponseWriter, err error, avisos Avisos) {
	code, mensagem := http.StatusInternalServerError, "Erro interno"
	switch {
	case errors.Is(err, sessao.ErrCredenciaisInvalidas):
		code, mensagem = http.StatusUnauthorized, sessao.ErrCredenciaisInvalidas.Error()
	case errors.Is(err, sessao.ErrNaoAutenticado):
		code, mensagem = http.StatusUnauthorized, sessao.ErrNaoAutenticado.Error()
	case errors.Is(err, sessao.ErrCriacaoConta):
		code, mensagem = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, sessao.ErrEncerrado):
		code, mensagem = http.StatusServiceUnavailable, "Sessão indisponível"
	}
	slog.Error("API Error", "code", code, "message", mensagem, "error", err)

	ns, _ := avisos.Retirar()
	respondWithJSON(w, code, RespostaErro{Erro: mensagem, Notificacoes: ns})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	slog.Error("API Error", "code", code, "message", message)
	respondWithJSON(w, code, RespostaErro{Erro: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
