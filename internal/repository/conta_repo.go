package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/willjrcristo/gestao-juridica/internal/domain"
)

var (
	ErrRegistroNaoEncontrado = errors.New("registro não encontrado")
	ErrEmailDuplicado        = errors.New("email já cadastrado")
	// ErrPerfilDuplicado indica que o usuário já tem um perfil (advogados.user_id é único).
	ErrPerfilDuplicado = errors.New("perfil já existe para o usuário")
)

// ContaRepository guarda as contas do provedor de identidade.
type ContaRepository interface {
	CriarConta(ctx context.Context, conta domain.Conta) error
	BuscarContaPorEmail(ctx context.Context, email string) (*domain.Conta, error)
	BuscarContaPorID(ctx context.Context, id string) (*domain.Conta, error)
	AtualizarMetadadosConta(ctx context.Context, id string, meta domain.Metadados) error
}

func (r *SQLiteRepository) CriarConta(ctx context.Context, c domain.Conta) error {
	meta, err := json.Marshal(c.Metadados)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO contas (id, email, senha_hash, metadados) VALUES (?, ?, ?, ?)",
		c.ID, c.Email, c.SenhaHash, string(meta))
	if err != nil {
		if violaUnicidade(err) {
			return ErrEmailDuplicado
		}
		return err
	}
	return nil
}

func violaUnicidade(err error) bool {
	var sqlErr sqlite3.Error
	return errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func (r *SQLiteRepository) BuscarContaPorEmail(ctx context.Context, email string) (*domain.Conta, error) {
	return r.buscarConta(ctx, "email", email)
}

func (r *SQLiteRepository) BuscarContaPorID(ctx context.Context, id string) (*domain.Conta, error) {
	return r.buscarConta(ctx, "id", id)
}

func (r *SQLiteRepository) buscarConta(ctx context.Context, coluna, valor string) (*domain.Conta, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, email, senha_hash, metadados, criado_em FROM contas WHERE "+coluna+" = ?", valor)

	var c domain.Conta
	var meta string
	if err := row.Scan(&c.ID, &c.Email, &c.SenhaHash, &meta, &c.CriadoEm); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(meta), &c.Metadados); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *SQLiteRepository) AtualizarMetadadosConta(ctx context.Context, id string, meta domain.Metadados) error {
	dados, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, "UPDATE contas SET metadados = ? WHERE id = ?", string(dados), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRegistroNaoEncontrado
	}
	return nil
}
