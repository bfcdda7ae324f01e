package worker

// email_worker.go
// Processes receipt email jobs from QueueEmail: loads the sale, renders the
// PDF in memory and mails it as an attachment.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pablini31/papelria/internal/apierror"
	"github.com/pablini31/papelria/internal/infra"
	"github.com/pablini31/papelria/internal/repository"
	"github.com/rs/zerolog/log"
)

// ReciboEmailPayload is the job payload sent to QueueEmail.
type ReciboEmailPayload struct {
	VentaID uint   `json:"venta_id"`
	Email   string `json:"email"`
}

// EmailWorker sends sale receipts to customer emails via SMTP.
type EmailWorker struct {
	ventas repository.VentaRepository
	mailer *infra.Mailer
	tienda string
}

// NewEmailWorker creates an EmailWorker with the provided SMTP mailer.
func NewEmailWorker(ventas repository.VentaRepository, mailer *infra.Mailer, tienda string) *EmailWorker {
	return &EmailWorker{ventas: ventas, mailer: mailer, tienda: tienda}
}

// Process sends an email with the PDF receipt as attachment.
// A sale deleted before the job ran is dropped, not retried.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReciboEmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if payload.Email == "" {
		log.Warn().Uint("venta_id", payload.VentaID).Msg("email_worker: empty email, skipping")
		return nil
	}

	venta, err := w.ventas.FindByID(ctx, payload.VentaID)
	if errors.Is(err, apierror.ErrNotFound) {
		log.Warn().Uint("venta_id", payload.VentaID).Msg("email_worker: venta no longer exists, skipping")
		return nil
	}
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := infra.GenerateReciboPDF(&buf, venta, w.tienda); err != nil {
		return err
	}

	subject := fmt.Sprintf("%s - Recibo %s", w.tienda, venta.NumeroRecibo)
	body := fmt.Sprintf("Gracias por su compra.\nAdjuntamos el recibo %s por un total de $%s.",
		venta.NumeroRecibo, venta.Total.StringFixed(2))
	filename := fmt.Sprintf("recibo-%s.pdf", venta.NumeroRecibo)

	if err := w.mailer.SendRecibo(payload.Email, subject, body, filename, buf.Bytes()); err != nil {
		return err
	}
	log.Info().Str("to", payload.Email).Uint("venta_id", venta.ID).Msg("email_worker: recibo sent successfully")
	return nil
}
