package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewPGAppointmentRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewPGAppointmentRepository(pool)
	assert.NotNil(t, repo)
}
