package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Métricas HTTP, registradas no registro padrão do Prometheus pelo promauto.
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requisições HTTP recebidas.",
		},
		[]string{"method", "path", "code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duração das requisições HTTP em segundos.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "code"},
	)
)

// registrarClientesAtivos expõe quantos clientes têm sessão carregada.
func registrarClientesAtivos(quantidade func() int) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "sessao_clientes_ativos",
		Help: "Número de clientes com sessão carregada em memória.",
	}, func() float64 {
		return float64(quantidade())
	})
}

// prometheusMiddleware coleta contagem e latência por rota.
func prometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Inicia o timer
		start := time.Now()

		// O ResponseWriter do chi guarda o status code escrito pelo handler.
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		// Chama o próximo handler na cadeia (a rota de fato)
		next.ServeHTTP(ww, r)

		// Com a rota já executada, coletamos as métricas.
		duracao := time.Since(start).Seconds()
		rota, codigo := rotaDaRequisicao(r), strconv.Itoa(ww.Status())

		// Incrementa o contador de requisições
		httpRequestsTotal.WithLabelValues(r.Method, rota, codigo).Inc()

		// Adiciona a duração ao histograma
		httpRequestDuration.WithLabelValues(r.Method, rota, codigo).Observe(duracao)
	})
}

// rotaDaRequisicao devolve o padrão da rota (ex: /sessao/login), não a URL,
// para não abrir uma série por cliente ou por id.
func rotaDaRequisicao(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.RoutePattern() == "" {
		return "nao_encontrada"
	}
	return rctx.RoutePattern()
}
