package journeycache

import (
	"testing"

	"github.com/passbi/railcore/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestKey_DeterministicForSameQuery(t *testing.T) {
	a := Key(1, 2, 1000, 2000, models.ModeSingle)
	b := Key(1, 2, 1000, 2000, models.ModeSingle)
	assert.Equal(t, a, b)
}

func TestKey_DiffersOnMode(t *testing.T) {
	a := Key(1, 2, 1000, 2000, models.ModeSingle)
	b := Key(1, 2, 1000, 2000, models.ModeMulti)
	assert.NotEqual(t, a, b)
}

func TestKey_DiffersOnStations(t *testing.T) {
	a := Key(1, 2, 1000, 2000, models.ModeSingle)
	b := Key(1, 3, 1000, 2000, models.ModeSingle)
	assert.NotEqual(t, a, b)
}
