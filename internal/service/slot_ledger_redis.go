package service

import (
	"context"
	"fmt"
	"time"

	"medassist/internal/domain/entity"
	"medassist/pkg/apperr"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisSlotKeyPrefix namespaces ledger keys in a shared Redis instance.
const RedisSlotKeyPrefix = "slot:"

// Each script runs atomically inside Redis, which gives the shared-store
// ledger the same linearizable per-key semantics as the in-memory one. The
// Go client switches to EVALSHA after the first call.
//
// A slot key holds "lock:<holder>" with a PX TTL while locked, or "booked"
// with no TTL once claimed. Lock expiry is therefore Redis's own key expiry.
var (
	acquireSlotScript = redis.NewScript(`
		local v = redis.call('GET', KEYS[1])
		if v == 'booked' then return -1 end
		if v and v ~= 'lock:'..ARGV[1] then return -2 end
		redis.call('SET', KEYS[1], 'lock:'..ARGV[1], 'PX', ARGV[2])
		return 1
	`)

	releaseSlotScript = redis.NewScript(`
		local v = redis.call('GET', KEYS[1])
		if v == 'lock:'..ARGV[1] then redis.call('DEL', KEYS[1]) end
		return 1
	`)

	claimSlotScript = redis.NewScript(`
		local v = redis.call('GET', KEYS[1])
		if v == 'booked' then return -1 end
		if v then
			if v ~= 'lock:'..ARGV[1] then return -2 end
		elseif ARGV[2] == '1' then
			return -3
		end
		redis.call('SET', KEYS[1], 'booked')
		return 1
	`)

	freeSlotScript = redis.NewScript(`
		if redis.call('GET', KEYS[1]) == 'booked' then
			redis.call('DEL', KEYS[1])
		end
		return 1
	`)
)

// redisSlotLedger is the shared-store implementation for multi-instance
// deployments.
type redisSlotLedger struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewRedisSlotLedger(client *redis.Client, log *logrus.Logger) SlotLedger {
	return &redisSlotLedger{
		client: client,
		log:    log,
	}
}

func (l *redisSlotLedger) slotKey(key entity.SlotKey) string {
	return RedisSlotKeyPrefix + key.String()
}

func (l *redisSlotLedger) Acquire(ctx context.Context, key entity.SlotKey, holder string, ttl time.Duration) error {
	result, err := acquireSlotScript.Run(ctx, l.client, []string{l.slotKey(key)}, holder, ttl.Milliseconds()).Int()
	if err != nil {
		l.log.Warnf("Failed Lua acquire for slot %s: %+v", key, err)
		return fmt.Errorf("lua acquire for slot %s: %w", key, err)
	}
	switch result {
	case -1:
		return apperr.Conflict("slot is already booked")
	case -2:
		return apperr.Conflict("slot is locked by another holder")
	}
	return nil
}

func (l *redisSlotLedger) Release(ctx context.Context, key entity.SlotKey, holder string) error {
	if err := releaseSlotScript.Run(ctx, l.client, []string{l.slotKey(key)}, holder).Err(); err != nil {
		l.log.Warnf("Failed Lua release for slot %s: %+v", key, err)
		return fmt.Errorf("lua release for slot %s: %w", key, err)
	}
	return nil
}

func (l *redisSlotLedger) Claim(ctx context.Context, key entity.SlotKey, holder string, requireLock bool) error {
	requireArg := "0"
	if requireLock {
		requireArg = "1"
	}
	result, err := claimSlotScript.Run(ctx, l.client, []string{l.slotKey(key)}, holder, requireArg).Int()
	if err != nil {
		l.log.Warnf("Failed Lua claim for slot %s: %+v", key, err)
		return fmt.Errorf("lua claim for slot %s: %w", key, err)
	}
	switch result {
	case -1:
		return apperr.Conflict("slot is already booked")
	case -2:
		return apperr.Conflict("slot is locked by another holder")
	case -3:
		return apperr.Conflict("no live lock held for slot")
	}
	return nil
}

func (l *redisSlotLedger) Free(ctx context.Context, key entity.SlotKey) error {
	if err := freeSlotScript.Run(ctx, l.client, []string{l.slotKey(key)}).Err(); err != nil {
		l.log.Warnf("Failed Lua free for slot %s: %+v", key, err)
		return fmt.Errorf("lua free for slot %s: %w", key, err)
	}
	return nil
}

func (l *redisSlotLedger) Occupied(ctx context.Context, key entity.SlotKey) (bool, error) {
	n, err := l.client.Exists(ctx, l.slotKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("exists for slot %s: %w", key, err)
	}
	return n > 0, nil
}
