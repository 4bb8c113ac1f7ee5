// Package storage оборачивает персистентное key-value хранилище клиента.
// Значения сериализуются в JSON; get возвращает признак наличия ключа.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/perfectinsta/extension-client/internal/config"
)

type KV struct {
	Db *redis.Client
}

func New(ctx context.Context, cfg config.RedisConnection) (*KV, error) {
	const op = "storage.New"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &KV{Db: db}, nil
}

// Get читает значение по ключу и декодирует его в result.
// Возвращает false без ошибки, если ключа нет.
func (s *KV) Get(ctx context.Context, key string, result any) (bool, error) {
	const op = "storage.Get"
	val, err := s.Db.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	err = json.Unmarshal([]byte(val), result)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set пишет значение по ключу. Записи бессрочные: хранилище переживает
// перезапуски обоих процессов.
func (s *KV) Set(ctx context.Context, key string, value any) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Db.Set(ctx, key, jsonData, 0).Err()
}

// Remove удаляет перечисленные ключи.
func (s *KV) Remove(ctx context.Context, keys ...string) error {
	return s.Db.Del(ctx, keys...).Err()
}

// Clear удаляет все данные клиента. Используется при удалении аккаунта.
func (s *KV) Clear(ctx context.Context) error {
	return s.Db.FlushDB(ctx).Err()
}

// Close закрывает подключение к хранилищу.
func (s *KV) Close() error {
	return s.Db.Close()
}
