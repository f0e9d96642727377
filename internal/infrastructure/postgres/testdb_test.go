package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-lotes/pkg/config"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Contenedor compartido por todos los tests del paquete; cada test limpia las tablas.
var (
	sharedOnce      sync.Once
	sharedContainer *tcpostgres.PostgresContainer
	sharedPool      *pgxpool.Pool
	sharedErr       error
)

func TestMain(m *testing.M) {
	code := m.Run()
	if sharedPool != nil {
		sharedPool.Close()
	}
	if sharedContainer != nil {
		_ = sharedContainer.Terminate(context.Background())
	}
	os.Exit(code)
}

// newTestPool devuelve un pool sobre un PostgreSQL real con las migraciones aplicadas y tablas vacías.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("integración con PostgreSQL omitida en -short")
	}
	sharedOnce.Do(func() {
		ctx := context.Background()
		sharedContainer, sharedErr = tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("lotes_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		if sharedErr != nil {
			return
		}
		var dsn string
		dsn, sharedErr = sharedContainer.ConnectionString(ctx, "sslmode=disable")
		if sharedErr != nil {
			return
		}
		sharedPool, sharedErr = postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 10})
		if sharedErr != nil {
			return
		}
		sharedErr = postgres.Migrate(sharedPool, logger.Nop())
	})
	require.NoError(t, sharedErr, "levantar PostgreSQL de prueba")

	_, err := sharedPool.Exec(context.Background(),
		`TRUNCATE order_item_costs, inventory_lots, inventory_levels, variant_costs`)
	require.NoError(t, err)
	return sharedPool
}
