// Package sessao mantém o usuário autenticado de um cliente: deriva-o do
// provedor de identidade e dos registros de perfil e assinatura, guarda um
// snapshot no armazenamento local e serializa todas as transições num único
// goroutine.
package sessao

import "errors"

// Estado é o estado da sessão.
type Estado int

const (
	Carregando Estado = iota
	NaoAutenticado
	Autenticado
)

func (e Estado) String() string {
	switch e {
	case Carregando:
		return "carregando"
	case NaoAutenticado:
		return "nao_autenticado"
	case Autenticado:
		return "autenticado"
	default:
		return "desconhecido"
	}
}

// Rotas para onde o frontend é enviado depois de entrar e de sair.
const (
	RotaAutenticada = "/dashboard"
	RotaPublica     = "/"
)

// chaveSnapshot é a chave do snapshot do usuário no armazenamento local.
const chaveSnapshot = "user"

var (
	// ErrCredenciaisInvalidas não diferencia senha errada de conta inexistente.
	ErrCredenciaisInvalidas = errors.New("email ou senha inválidos")
	// ErrCriacaoConta envolve o motivo informado pelo provedor de identidade.
	ErrCriacaoConta   = errors.New("não foi possível criar a conta")
	ErrNaoAutenticado = errors.New("usuário não autenticado")
	ErrEncerrado      = errors.New("sessão encerrada")

	// Só aparecem nos logs.
	ErrConsultaDegradada = errors.New("consulta remota degradada")
	ErrEscritaSecundaria = errors.New("escrita secundária falhou")
)

// CredenciaisAdmin é o par fixo que dá acesso de administrador.
// O email sozinho já basta para marcar o usuário como administrador.
type CredenciaisAdmin struct {
	Email string
	Senha string
}

// AdminPadrao são as credenciais usadas quando a configuração não informa outras.
var AdminPadrao = CredenciaisAdmin{
	Email: "marcelusluna09@gmail.com",
	Senha: "Ms091098@",
}

func (c CredenciaisAdmin) ehEmail(email string) bool {
	return c.Email != "" && email == c.Email
}

func (c CredenciaisAdmin) conferem(email, senha string) bool {
	return c.ehEmail(email) && senha == c.Senha
}
