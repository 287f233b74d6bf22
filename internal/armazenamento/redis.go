package armazenamento

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis guarda os valores no Redis, sem expiração, sob um namespace.
type Redis struct {
	client    redis.UniversalClient
	namespace string
}

// RedisConfig contém as opções de conexão.
type RedisConfig struct {
	Enderecos []string
	Senha     string
	DB        int
	Namespace string
}

// NewRedis conecta ao Redis (cluster quando houver mais de um endereço) e testa a conexão.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if len(cfg.Enderecos) == 0 {
		return nil, errors.New("nenhum endereço do redis informado")
	}

	var rdb redis.UniversalClient
	if len(cfg.Enderecos) > 1 {
		rdb = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    cfg.Enderecos,
			Password: cfg.Senha,
		})
	} else {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Enderecos[0],
			Password: cfg.Senha,
			DB:       cfg.DB,
		})
	}

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("conectar ao redis: %w", err)
	}
	return NewRedisComCliente(rdb, cfg.Namespace), nil
}

// NewRedisComCliente usa um cliente já configurado.
func NewRedisComCliente(client redis.UniversalClient, namespace string) *Redis {
	if namespace == "" {
		namespace = "gestao-juridica"
	}
	return &Redis{client: client, namespace: namespace}
}

func (r *Redis) chave(k string) string {
	return r.namespace + ":" + k
}

func (r *Redis) Obter(ctx context.Context, chave string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.chave(chave)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *Redis) Definir(ctx context.Context, chave, valor string) error {
	return r.client.Set(ctx, r.chave(chave), valor, 0).Err()
}

func (r *Redis) Remover(ctx context.Context, chave string) error {
	return r.client.Del(ctx, r.chave(chave)).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
