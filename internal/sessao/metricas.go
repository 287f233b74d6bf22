package sessao

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// sessao_transicoes_total conta as transições por tipo e resultado
// ("ok", "erro", "ignorada").
var transicoesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sessao_transicoes_total",
		Help: "Número de transições da sessão por tipo e resultado.",
	},
	[]string{"transicao", "resultado"},
)

func contar(transicao string, err error) {
	resultado := "ok"
	if err != nil {
		resultado = "erro"
	}
	transicoesTotal.WithLabelValues(transicao, resultado).Inc()
}
