package service

import (
	"context"
	"testing"

	"github.com/pablini31/papelria/internal/apierror"
	"github.com/pablini31/papelria/internal/dto"
	"github.com/pablini31/papelria/internal/model"
	"github.com/pablini31/papelria/internal/repository"
	"github.com/pablini31/papelria/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newUsuarioSvc(t *testing.T) (UsuarioService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return NewUsuarioService(repository.NewUsuarioRepository(db)), db
}

func passwordHash(t *testing.T, db *gorm.DB, id uint) string {
	t.Helper()
	var u model.Usuario
	require.NoError(t, db.First(&u, id).Error)
	return u.PasswordHash
}

func TestCrearUsuario_GuardaHash(t *testing.T) {
	svc, db := newUsuarioSvc(t)
	resp, err := svc.Crear(context.Background(), dto.CrearUsuarioRequest{
		Nombre: "Caja 1", Username: "caja1", Password: "secreto1", Rol: "cajero",
	})
	require.NoError(t, err)
	assert.Equal(t, "caja1", resp.Username)

	hash := passwordHash(t, db, resp.ID)
	assert.NotEqual(t, "secreto1", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secreto1")))
}

func TestCrearUsuario_UsernameDuplicado(t *testing.T) {
	svc, _ := newUsuarioSvc(t)
	ctx := context.Background()
	req := dto.CrearUsuarioRequest{Nombre: "Ana", Username: "ana", Password: "secreto1", Rol: "cajero"}
	_, err := svc.Crear(ctx, req)
	require.NoError(t, err)

	_, err = svc.Crear(ctx, req)
	assert.ErrorIs(t, err, apierror.ErrConflict)
}

func TestActualizarUsuario_CambiaPassword(t *testing.T) {
	svc, db := newUsuarioSvc(t)
	ctx := context.Background()
	u, err := svc.Crear(ctx, dto.CrearUsuarioRequest{Nombre: "Luis", Username: "luis", Password: "viejo123", Rol: "inventario"})
	require.NoError(t, err)

	nueva := "nuevo456"
	rol := "admin"
	got, err := svc.Actualizar(ctx, u.ID, dto.ActualizarUsuarioRequest{Password: &nueva, Rol: &rol})
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Rol)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(passwordHash(t, db, u.ID)), []byte(nueva)))

	require.NoError(t, svc.Eliminar(ctx, u.ID))
	assert.ErrorIs(t, svc.Eliminar(ctx, u.ID), apierror.ErrNotFound)
}

func TestAsegurarAdmin(t *testing.T) {
	svc, db := newUsuarioSvc(t)
	ctx := context.Background()

	u, created, err := svc.AsegurarAdmin(ctx, "Dueña", "admin", "primera1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "admin", u.Rol)

	again, created, err := svc.AsegurarAdmin(ctx, "", "admin", "segunda2")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.ID, again.ID)
	assert.Equal(t, "Dueña", again.Nombre)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(passwordHash(t, db, u.ID)), []byte("segunda2")))

	_, _, err = svc.AsegurarAdmin(ctx, "", "admin", "123")
	assert.ErrorIs(t, err, apierror.ErrValidation)
}
