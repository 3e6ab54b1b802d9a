package configuration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultRedisKeyPrefix = "notebook-commands:settings"
)

type RedisOptions struct {
	Address   string
	Password  string
	Database  int
	KeyPrefix string
}

// RedisStore keeps settings in Redis so that they are shared by every daemon using the same server.
// Each scope is a hash whose fields are setting keys and whose values are JSON-encoded.
type RedisStore struct {
	logger        *zap.Logger
	sugaredLogger *zap.SugaredLogger

	keyPrefix string
	client    redis.UniversalClient
}

func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.Database,
	})

	return NewRedisStoreWithClient(client, opts.KeyPrefix)
}

// NewRedisStoreWithClient creates a RedisStore that uses an existing client. The store owns the client.
func NewRedisStoreWithClient(client redis.UniversalClient, keyPrefix string) (*RedisStore, error) {
	logger, err := zap.NewDevelopment()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "[ERROR] Failed to create Zap Development logger because: %v\n", err)
		return nil, err
	}

	if keyPrefix == "" {
		keyPrefix = DefaultRedisKeyPrefix
	}

	return &RedisStore{
		logger:        logger,
		sugaredLogger: logger.Sugar(),
		keyPrefix:     keyPrefix,
		client:        client,
	}, nil
}

// Ping checks that the Redis server is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Settings(ctx context.Context, resource string) (Settings, error) {
	settings := DefaultSettings()

	global, err := s.load(ctx, s.globalKey())
	if err != nil {
		return settings, err
	}
	apply(&settings, global)

	if resource == "" {
		return settings, nil
	}

	scoped, err := s.load(ctx, s.resourceKey(resource))
	if err != nil {
		return settings, err
	}
	apply(&settings, scoped)

	return settings, nil
}

func (s *RedisStore) UpdateSetting(ctx context.Context, key string, value interface{}, resource string, target Target) error {
	if err := validateSetting(key, value); err != nil {
		return err
	}

	var redisKey string
	switch target {
	case Global:
		redisKey = s.globalKey()
	case Resource:
		if resource == "" {
			return ErrMissingResource
		}
		redisKey = s.resourceKey(resource)
	default:
		return fmt.Errorf("%w: unknown target %s", ErrInvalidSettingValue, target)
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if err := s.client.HSet(ctx, redisKey, key, string(encoded)).Err(); err != nil {
		s.logger.Error("Failed to write setting to Redis.",
			zap.String("redis_key", redisKey),
			zap.String("setting", key),
			zap.Error(err))
		return err
	}

	s.logger.Debug("Wrote setting to Redis.",
		zap.String("redis_key", redisKey),
		zap.String("setting", key),
		zap.String("target", target.String()),
		zap.ByteString("value", encoded))

	return nil
}

func (s *RedisStore) Close() error {
	_ = s.logger.Sync()
	return s.client.Close()
}

func (s *RedisStore) load(ctx context.Context, redisKey string) (map[string]interface{}, error) {
	fields, err := s.client.HGetAll(ctx, redisKey).Result()
	if err != nil {
		s.logger.Error("Failed to read settings from Redis.",
			zap.String("redis_key", redisKey),
			zap.Error(err))
		return nil, err
	}

	values := make(map[string]interface{}, len(fields))
	for field, raw := range fields {
		var value interface{}
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			s.logger.Warn("Ignoring malformed setting in Redis.",
				zap.String("redis_key", redisKey),
				zap.String("setting", field),
				zap.Error(err))
			continue
		}
		values[field] = value
	}

	return values, nil
}

func (s *RedisStore) globalKey() string {
	return s.keyPrefix + ":global"
}

func (s *RedisStore) resourceKey(resource string) string {
	return fmt.Sprintf("%s:resource:%s", s.keyPrefix, resource)
}
