package worker

// alertas_cron.go
// Background goroutine that periodically scans the catalog for products at or
// below their minimum stock threshold and mails a daily digest to the admin.
// A Redis key dated by day guarantees at most one digest per day even when
// several instances run the cron.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/H-Riv/mundo-cartas/internal/infra"
	"github.com/H-Riv/mundo-cartas/internal/model"
	"github.com/H-Riv/mundo-cartas/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	alertasTickInterval = 1 * time.Hour
	alertasDedupeKey    = "alertas:digest:"
	alertasDedupeTTL    = 48 * time.Hour
)

// AlertasCronConfig holds all dependencies for the digest goroutine.
type AlertasCronConfig struct {
	ProductoRepo repository.ProductoRepository
	Mailer       *infra.Mailer
	RDB          *redis.Client
	AdminEmail   string
}

// StartAlertasCron launches a background goroutine that ticks every hour and
// sends the low-stock digest once per day. It respects the context for
// graceful shutdown.
func StartAlertasCron(ctx context.Context, cfg AlertasCronConfig) {
	if cfg.AdminEmail == "" {
		log.Info().Msg("alertas_cron: no admin email configured, digest disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(alertasTickInterval)
		defer ticker.Stop()

		log.Info().Msg("alertas_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("alertas_cron: shutting down")
				return
			case <-ticker.C:
				processDigest(ctx, cfg)
			}
		}
	}()
}

func processDigest(ctx context.Context, cfg AlertasCronConfig) {
	// SETNX dated key — only the first instance of the day sends.
	key := alertasDedupeKey + time.Now().Format("2006-01-02")
	ok, err := cfg.RDB.SetNX(ctx, key, "1", alertasDedupeTTL).Result()
	if err != nil {
		log.Error().Err(err).Msg("alertas_cron: dedupe check failed")
		return
	}
	if !ok {
		return // already sent today
	}

	productos, err := cfg.ProductoRepo.ListActivos(ctx)
	if err != nil {
		log.Error().Err(err).Msg("alertas_cron: failed to list products")
		return
	}

	var criticos, bajos []model.Producto
	for _, p := range productos {
		switch p.EstadoStock() {
		case model.StockCritico:
			criticos = append(criticos, p)
		case model.StockBajo:
			bajos = append(bajos, p)
		}
	}
	if len(criticos) == 0 && len(bajos) == 0 {
		return
	}

	var b strings.Builder
	b.WriteString("Resumen diario de stock bajo:\n\n")
	if len(criticos) > 0 {
		b.WriteString("STOCK CRITICO:\n")
		for _, p := range criticos {
			fmt.Fprintf(&b, "  %s  %s — %d unidades (mínimo %d)\n", p.CodigoSKU, p.Nombre, p.Stock, p.StockMinimo)
		}
		b.WriteString("\n")
	}
	if len(bajos) > 0 {
		b.WriteString("STOCK BAJO:\n")
		for _, p := range bajos {
			fmt.Fprintf(&b, "  %s  %s — %d unidades (mínimo %d)\n", p.CodigoSKU, p.Nombre, p.Stock, p.StockMinimo)
		}
	}

	subject := fmt.Sprintf("Mundo Cartas — alertas de stock (%d críticos, %d bajos)", len(criticos), len(bajos))
	if err := cfg.Mailer.Send(cfg.AdminEmail, subject, b.String()); err != nil {
		log.Error().Err(err).Msg("alertas_cron: failed to send digest")
		// Drop the dedupe key so the next tick retries.
		_ = cfg.RDB.Del(ctx, key).Err()
		return
	}
	log.Info().Int("criticos", len(criticos)).Int("bajos", len(bajos)).Msg("alertas_cron: digest sent")
}
