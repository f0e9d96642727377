package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	appinventory "github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
	"github.com/redis/go-redis/v9"
)

var _ appinventory.LotSequencer = (*RedisLotSequencer)(nil)

const (
	defaultSequencePrefix = "lots:seq:"
	sequenceTTL           = 48 * time.Hour
	unseeded              = -1
)

// nextSeq incrementa el contador del día. Si la clave no existe y no se entregó semilla devuelve -1;
// con semilla, la fija con SET NX (otro proceso pudo haberla creado antes) y luego incrementa.
var nextSeq = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return redis.call('INCR', KEYS[1])
end
if ARGV[1] == '' then
  return -1
end
redis.call('SET', KEYS[1], ARGV[1], 'NX', 'EX', ARGV[2])
return redis.call('INCR', KEYS[1])
`)

// RedisLotSequencer reparte secuencias diarias de números de lote desde un contador en Redis.
// El contador se siembra con la mayor secuencia persistida del día, así que convive con lotes
// creados antes de activar este backend. Una transacción revertida deja un hueco en la numeración;
// la unicidad la sigue garantizando el índice único de lot_number.
type RedisLotSequencer struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisLotSequencer construye el secuenciador. keyPrefix vacío usa "lots:seq:".
func NewRedisLotSequencer(client *redis.Client, keyPrefix string) *RedisLotSequencer {
	if keyPrefix == "" {
		keyPrefix = defaultSequencePrefix
	}
	return &RedisLotSequencer{client: client, keyPrefix: keyPrefix}
}

// Next devuelve la siguiente secuencia del día.
func (s *RedisLotSequencer) Next(ctx context.Context, lots repository.LotRepository, day time.Time) (int, error) {
	key := s.keyPrefix + inventory.LotNumberDayPrefix(day)
	ttl := strconv.Itoa(int(sequenceTTL.Seconds()))

	seq, err := nextSeq.Run(ctx, s.client, []string{key}, "", ttl).Int()
	if err != nil {
		return 0, fmt.Errorf("redis lot sequence: %w", err)
	}
	if seq != unseeded {
		return seq, nil
	}

	seed, err := lots.MaxLotSequence(ctx, day)
	if err != nil {
		return 0, err
	}
	seq, err = nextSeq.Run(ctx, s.client, []string{key}, strconv.Itoa(seed), ttl).Int()
	if err != nil {
		return 0, fmt.Errorf("redis lot sequence: %w", err)
	}
	return seq, nil
}
