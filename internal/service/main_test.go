package service

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	BcryptCost = bcrypt.MinCost
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}
