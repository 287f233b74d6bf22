package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/willjrcristo/gestao-juridica/internal/domain"
)

// DadosRepository reúne as operações sobre perfis, assinaturas e planos.
// Buscas sem resultado devolvem (nil, nil).
type DadosRepository interface {
	BuscarAssinatura(ctx context.Context, userID string) (*domain.Assinatura, error)
	BuscarPerfil(ctx context.Context, userID string) (*domain.Perfil, error)
	InserirPerfil(ctx context.Context, perfil domain.Perfil) (string, error)
	AtualizarPerfil(ctx context.Context, id string, campos domain.AtualizacaoPerfil) error
	InserirAssinatura(ctx context.Context, a domain.Assinatura) error
	BuscarPrecoPlano(ctx context.Context, nome string) (float64, bool, error)

	BuscarPlano(ctx context.Context, nome string) (*domain.Plano, error)
	DefinirPrecoStripe(ctx context.Context, plano, priceID string) error
	DefinirClienteStripe(ctx context.Context, assinaturaID int64, customerID string) error
	BuscarAssinaturaPorClienteStripe(ctx context.Context, customerID string) (*domain.Assinatura, error)
	AtualizarStatusAssinatura(ctx context.Context, assinaturaID int64, status, dataFim, subscriptionID string) error
}

// SQLiteRepository é a implementação de DadosRepository e ContaRepository para SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository cria o repositório sobre uma conexão já migrada.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{
		db: db,
	}
}

// --- ASSINATURAS ---

const colunasAssinatura = `id, user_id, plano, data_inicio, COALESCE(data_fim, ''), preco, status,
	COALESCE(stripe_payment_method_id, ''), COALESCE(stripe_customer_id, ''),
	COALESCE(stripe_subscription_id, ''), criado_em`

func scanAssinatura(row *sql.Row) (*domain.Assinatura, error) {
	var a domain.Assinatura
	err := row.Scan(&a.ID, &a.UserID, &a.Plano, &a.DataInicio, &a.DataFim, &a.Preco, &a.Status,
		&a.StripePaymentMethodID, &a.StripeCustomerID, &a.StripeSubscriptionID, &a.CriadoEm)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// BuscarAssinatura devolve a assinatura mais recente do usuário.
func (r *SQLiteRepository) BuscarAssinatura(ctx context.Context, userID string) (*domain.Assinatura, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+colunasAssinatura+" FROM assinaturas WHERE user_id = ? ORDER BY criado_em DESC, id DESC LIMIT 1",
		userID)
	return scanAssinatura(row)
}

func (r *SQLiteRepository) BuscarAssinaturaPorClienteStripe(ctx context.Context, customerID string) (*domain.Assinatura, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+colunasAssinatura+" FROM assinaturas WHERE stripe_customer_id = ? ORDER BY criado_em DESC, id DESC LIMIT 1",
		customerID)
	return scanAssinatura(row)
}

func (r *SQLiteRepository) InserirAssinatura(ctx context.Context, a domain.Assinatura) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO assinaturas (user_id, plano, data_inicio, data_fim, preco, status, stripe_payment_method_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Plano, a.DataInicio, a.DataFim, a.Preco, a.Status, nuloSeVazio(a.StripePaymentMethodID))
	return err
}

func (r *SQLiteRepository) DefinirClienteStripe(ctx context.Context, assinaturaID int64, customerID string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE assinaturas SET stripe_customer_id = ? WHERE id = ?", customerID, assinaturaID)
	return err
}

func (r *SQLiteRepository) AtualizarStatusAssinatura(ctx context.Context, assinaturaID int64, status, dataFim, subscriptionID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE assinaturas
		SET status = ?, data_fim = COALESCE(?, data_fim), stripe_subscription_id = COALESCE(?, stripe_subscription_id)
		WHERE id = ?`,
		status, nuloSeVazio(dataFim), nuloSeVazio(subscriptionID), assinaturaID)
	return err
}

// --- PERFIS ---

func (r *SQLiteRepository) BuscarPerfil(ctx context.Context, userID string) (*domain.Perfil, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, COALESCE(nome, ''), COALESCE(email, ''), COALESCE(telefone, ''),
			COALESCE(oab, ''), COALESCE(bio, '')
		FROM advogados WHERE user_id = ? ORDER BY criado_em ASC LIMIT 1`, userID)

	var p domain.Perfil
	if err := row.Scan(&p.ID, &p.UserID, &p.Nome, &p.Email, &p.Telefone, &p.OAB, &p.Bio); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// InserirPerfil grava um novo perfil e devolve o ID gerado. Cada usuário tem
// no máximo um perfil; uma segunda inserção devolve ErrPerfilDuplicado.
func (r *SQLiteRepository) InserirPerfil(ctx context.Context, p domain.Perfil) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO advogados (id, user_id, nome, email, telefone, oab, bio)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, p.UserID, nuloSeVazio(p.Nome), nuloSeVazio(p.Email), nuloSeVazio(p.Telefone),
		nuloSeVazio(p.OAB), nuloSeVazio(p.Bio))
	if err != nil {
		if violaUnicidade(err) {
			return "", ErrPerfilDuplicado
		}
		return "", err
	}
	return id, nil
}

// AtualizarPerfil altera apenas as colunas informadas em campos.
func (r *SQLiteRepository) AtualizarPerfil(ctx context.Context, id string, campos domain.AtualizacaoPerfil) error {
	var sets []string
	var args []any
	adicionar := func(coluna string, valor *string) {
		if valor != nil {
			sets = append(sets, coluna+" = ?")
			args = append(args, *valor)
		}
	}
	adicionar("nome", campos.Nome)
	adicionar("email", campos.Email)
	adicionar("telefone", campos.Telefone)
	adicionar("oab", campos.OAB)
	adicionar("bio", campos.Bio)
	sets = append(sets, "atualizado_em = CURRENT_TIMESTAMP")
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, "UPDATE advogados SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRegistroNaoEncontrado
	}
	return nil
}

// --- PLANOS ---

func (r *SQLiteRepository) BuscarPlano(ctx context.Context, nome string) (*domain.Plano, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT nome, preco, COALESCE(stripe_price_id, '') FROM planos WHERE nome = ?", nome)

	var p domain.Plano
	if err := row.Scan(&p.Nome, &p.Preco, &p.StripePriceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// BuscarPrecoPlano devolve o preço do plano e se ele existe no catálogo.
func (r *SQLiteRepository) BuscarPrecoPlano(ctx context.Context, nome string) (float64, bool, error) {
	p, err := r.BuscarPlano(ctx, nome)
	if err != nil || p == nil {
		return 0, false, err
	}
	return p.Preco, true, nil
}

func (r *SQLiteRepository) DefinirPrecoStripe(ctx context.Context, plano, priceID string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE planos SET stripe_price_id = ? WHERE nome = ?", priceID, plano)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRegistroNaoEncontrado
	}
	return nil
}

func nuloSeVazio(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
