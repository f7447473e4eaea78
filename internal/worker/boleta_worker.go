package worker

// boleta_worker.go
// Processes receipt jobs from QueueBoleta: generates the PDF boleta for a
// completed Venta and, when the customer left an email, enqueues the send.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/H-Riv/mundo-cartas/internal/infra"
	"github.com/H-Riv/mundo-cartas/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// BoletaJobPayload is the job envelope sent to QueueBoleta.
type BoletaJobPayload struct {
	VentaID      string  `json:"venta_id"`
	ClienteEmail *string `json:"cliente_email,omitempty"`
}

type BoletaWorker struct {
	ventaRepo      repository.VentaRepository
	dispatcher     *Dispatcher
	pdfStoragePath string
}

func NewBoletaWorker(ventaRepo repository.VentaRepository, dispatcher *Dispatcher, pdfStoragePath string) *BoletaWorker {
	return &BoletaWorker{
		ventaRepo:      ventaRepo,
		dispatcher:     dispatcher,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process handles a single boleta job:
//  1. Parse BoletaJobPayload from the job envelope
//  2. Fetch the Venta (with items) from DB
//  3. Generate the PDF boleta
//  4. Optionally enqueue an email job with the PDF attached
func (w *BoletaWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload BoletaJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("boleta_worker: invalid payload: %w", err)
	}

	ventaID, err := uuid.Parse(payload.VentaID)
	if err != nil {
		return fmt.Errorf("boleta_worker: invalid venta_id %q", payload.VentaID)
	}

	venta, err := w.ventaRepo.FindByID(ctx, ventaID)
	if err != nil {
		return fmt.Errorf("boleta_worker: venta %s not found: %w", payload.VentaID, err)
	}

	pdfPath, err := infra.GenerateBoletaPDF(venta, w.pdfStoragePath)
	if err != nil {
		return fmt.Errorf("boleta_worker: generate PDF for %s: %w", venta.Folio, err)
	}
	log.Info().Str("pdf", pdfPath).Str("folio", venta.Folio).Msg("boleta_worker: PDF generated")

	if payload.ClienteEmail != nil && *payload.ClienteEmail != "" {
		emailJob := EmailJobPayload{
			ToEmail: *payload.ClienteEmail,
			Subject: fmt.Sprintf("Boleta Mundo Cartas — %s", venta.Folio),
			Body:    fmt.Sprintf("Adjunto encontrarás tu boleta de compra.\nTotal: $%s", venta.Total.StringFixed(0)),
			PDFPath: pdfPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", *payload.ClienteEmail).Msg("boleta_worker: failed to enqueue email")
		} else {
			log.Info().Str("email", *payload.ClienteEmail).Msg("boleta_worker: email job enqueued")
		}
	}
	return nil
}
