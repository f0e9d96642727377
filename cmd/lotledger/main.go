// lotledger es el punto de entrada operativo del ledger de lotes.
//
// Uso: lotledger <migrate|bootstrap|valuation>
//
//	migrate    aplica las migraciones embebidas
//	bootstrap  crea lotes heredados a costo cero desde inventory_levels
//	valuation  imprime la valorización del inventario activo
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-lotes/pkg/config"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
)

const usage = "uso: lotledger <migrate|bootstrap|valuation>"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	cmd := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
		Out:   os.Stderr,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("command", cmd).
		Msg("iniciando")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cmd == "migrate" || cfg.DB.AutoMigrate {
		if err := postgres.Migrate(pool, log); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	switch cmd {
	case "migrate":
	case "bootstrap":
		err = runBootstrap(ctx, cfg, pool, log)
	case "valuation":
		err = runValuation(ctx, cfg, pool, log)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Str("command", cmd).Msg("comando falló")
		pool.Close()
		os.Exit(1)
	}
	log.Info().Str("command", cmd).Msg("listo")
}

// newLotUseCase arma LotUseCase con el secuenciador configurado.
func newLotUseCase(ctx context.Context, cfg *config.Config, txRunner inventory.TxRunner, log *logger.Logger) (*inventory.LotUseCase, func(), error) {
	var (
		sequencer inventory.LotSequencer
		cleanup   = func() {}
	)
	if cfg.Ledger.SequenceBackend == config.SequenceBackendRedis {
		client, err := cache.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		sequencer = cache.NewRedisLotSequencer(client, "")
		cleanup = func() { _ = client.Close() }
	}
	return inventory.NewLotUseCase(txRunner, sequencer, log, cfg.Ledger.ActiveLotsLimit), cleanup, nil
}

func runBootstrap(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, log *logger.Logger) error {
	txRunner := postgres.NewTxRunner(pool)
	lots, cleanup, err := newLotUseCase(ctx, cfg, txRunner, log)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := inventory.NewLegacyBootstrapUseCase(txRunner, lots, log).CreateLegacyLots(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("lotes heredados creados: %d, omitidos: %d\n", result.Created, result.Skipped)
	return nil
}

func runValuation(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, log *logger.Logger) error {
	txRunner := postgres.NewTxRunner(pool)
	lots := inventory.NewLotUseCase(txRunner, nil, log, cfg.Ledger.ActiveLotsLimit)
	report, err := inventory.NewCostUseCase(txRunner, lots, log).Valuation(ctx)
	if err != nil {
		return err
	}
	return writeValuation(os.Stdout, report)
}
