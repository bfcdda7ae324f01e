package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pablini31/papelria/internal/repository"
	"github.com/pablini31/papelria/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestEmailWorker_SkipsWithoutSending(t *testing.T) {
	db := testutil.NewDB(t)
	w := NewEmailWorker(repository.NewVentaRepository(db), nil, "Papeleria")
	ctx := context.Background()

	assert.NoError(t, w.Process(ctx, json.RawMessage(`{"venta_id":1,"email":""}`)))
	assert.NoError(t, w.Process(ctx, json.RawMessage(`{"venta_id":999,"email":"cliente@correo.mx"}`)))
	assert.Error(t, w.Process(ctx, json.RawMessage(`[1,2]`)))
}
