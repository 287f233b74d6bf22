package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/willjrcristo/gestao-juridica/docs"
	"github.com/willjrcristo/gestao-juridica/internal/armazenamento"
	"github.com/willjrcristo/gestao-juridica/internal/config"
	"github.com/willjrcristo/gestao-juridica/internal/database"
	httphandler "github.com/willjrcristo/gestao-juridica/internal/handler/http"
	"github.com/willjrcristo/gestao-juridica/internal/identidade"
	"github.com/willjrcristo/gestao-juridica/internal/notificacao"
	"github.com/willjrcristo/gestao-juridica/internal/repository"
	"github.com/willjrcristo/gestao-juridica/internal/service"
	"github.com/willjrcristo/gestao-juridica/internal/sessao"
)

// @title           API de Gestão Jurídica
// @version         1.0
// @description     Sessão, cadastro e assinaturas da plataforma de gestão para escritórios de advocacia.
//
// @contact.name   Will Cristo
// @contact.url    https://linkedin.com/in/willjrcristo
// @contact.email  willjrcristo@gmail.com
//
// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html
//
// @host      localhost:8080
// @BasePath  /
func main() {
	// --- 1. LOGGER E CONFIGURAÇÃO ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	slog.Info("🚀 Iniciando a API de Gestão Jurídica...")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuração inválida", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- 2. BANCO DE DADOS E ARMAZENAMENTO LOCAL ---
	db, err := database.Open(cfg.CaminhoBanco)
	if err != nil {
		slog.Error("Erro ao inicializar o banco de dados", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("💾 Banco de dados pronto", "caminho", cfg.CaminhoBanco)

	repo := repository.NewSQLiteRepository(db)
	for plano, priceID := range cfg.StripePriceIDs {
		if err := repo.DefinirPrecoStripe(ctx, plano, priceID); err != nil {
			slog.Warn("Preço da Stripe ignorado", "plano", plano, "error", err)
		}
	}

	kv, fecharKV, err := abrirArmazenamento(ctx, cfg)
	if err != nil {
		slog.Error("Erro ao conectar ao armazenamento de sessões", "error", err)
		os.Exit(1)
	}
	defer fecharKV()

	// --- 3. INJEÇÃO DE DEPENDÊNCIAS ---
	// Cada navegador tem o seu provedor de identidade e o seu gerenciador de sessão,
	// ambos sobre o mesmo repositório e com o armazenamento separado por cliente.
	admin := sessao.CredenciaisAdmin{Email: cfg.AdminEmail, Senha: cfg.AdminSenha}
	registro := sessao.NewRegistro(func(clienteID string) (*sessao.Gerenciador, *notificacao.Caixa) {
		log := logger.With("cliente_id", clienteID)
		kvCliente := armazenamento.ComPrefixo(kv, clienteID)
		caixa := notificacao.NewCaixa(log)
		provedor := identidade.NewLocal(identidade.ConfigLocal{
			Contas:        repo,
			Armazenamento: kvCliente,
			Segredo:       []byte(cfg.JWTSecret),
			Validade:      cfg.ValidadeToken(),
			Logger:        log,
		})
		return sessao.New(sessao.Dependencias{
			Provedor:      provedor,
			Dados:         repo,
			Armazenamento: kvCliente,
			Notificador:   caixa,
			Navegador:     caixa,
			Admin:         admin,
			Logger:        log,
		}), caixa
	}, logger)
	defer registro.Encerrar()
	registrarClientesAtivos(registro.Quantidade)

	obterSessao := func(ctx context.Context, clienteID string) (httphandler.Sessao, httphandler.Avisos, error) {
		g, caixa, err := registro.Obter(ctx, clienteID)
		if err != nil {
			return nil, nil, err
		}
		return g, caixa, nil
	}

	assinaturaService := service.NewAssinaturaService(repo,
		service.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret), cfg.FrontendURL, logger)

	sessaoHandler := httphandler.NewSessaoHandler(obterSessao)
	assinaturaHandler := httphandler.NewAssinaturaHandler(obterSessao, assinaturaService)
	webhookHandler := httphandler.NewStripeWebhookHandler(assinaturaService)

	// --- 4. ROTEADOR E ROTAS ---
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(prometheusMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("API de Gestão Jurídica está no ar! 🚀"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Mount("/sessao", sessaoHandler.Routes())
	r.Mount("/assinaturas", assinaturaHandler.Routes())
	r.Post("/webhooks/stripe", webhookHandler.HandleStripeWebhook)
	slog.Info("🛰️  Rotas registradas", "docs", "http://localhost:"+cfg.Porta+"/swagger/index.html")

	// --- 5. SERVIDOR HTTP ---
	srv := &http.Server{
		Addr:              ":" + cfg.Porta,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("✅ Servidor pronto para receber requisições", "porta", cfg.Porta)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Erro ao iniciar o servidor", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Encerrando o servidor...")
	desligar, cancelar := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelar()
	if err := srv.Shutdown(desligar); err != nil {
		slog.Error("Erro ao encerrar o servidor", "error", err)
	}
}

// abrirArmazenamento usa o Redis quando há endereços configurados e a memória
// do processo caso contrário.
func abrirArmazenamento(ctx context.Context, cfg config.Config) (armazenamento.Armazenamento, func(), error) {
	if len(cfg.RedisEnderecos) == 0 {
		slog.Warn("REDIS_ADDRS vazio, sessões ficam apenas em memória")
		return armazenamento.NewMemoria(), func() {}, nil
	}

	rdb, err := armazenamento.NewRedis(ctx, armazenamento.RedisConfig{
		Enderecos: cfg.RedisEnderecos,
		Senha:     cfg.RedisSenha,
		DB:        cfg.RedisDB,
	})
	if err != nil {
		return nil, nil, err
	}
	slog.Info("Armazenamento de sessões no Redis", "enderecos", cfg.RedisEnderecos)
	return rdb, func() {
		if err := rdb.Close(); err != nil {
			slog.Warn("Erro ao fechar o Redis", "error", err)
		}
	}, nil
}
