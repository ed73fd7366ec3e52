package market

import (
	"testing"

	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	m, err := c.Get("spread")
	require.NoError(t, err)
	assert.True(t, m.LineBearing)

	_, err = c.Get("corner_kicks_exact")
	assert.ErrorIs(t, err, domain.ErrUnknownMarket)

	list := c.List()
	require.NotEmpty(t, list)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].Key, list[i].Key)
	}
}

func TestValidateLeg(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	line := 45.5

	assert.NoError(t, c.ValidateLeg(domain.Leg{MarketKey: "total", Side: domain.SideOver, LineValue: &line}))
	assert.NoError(t, c.ValidateLeg(domain.Leg{MarketKey: "moneyline", Side: domain.SideHome}))

	err = c.ValidateLeg(domain.Leg{MarketKey: "total", Side: domain.SideOver})
	assert.ErrorIs(t, err, domain.ErrIncompleteLeg)

	err = c.ValidateLeg(domain.Leg{MarketKey: "total", Side: domain.SideHome, LineValue: &line})
	assert.ErrorIs(t, err, domain.ErrIncompleteLeg)

	err = c.ValidateLeg(domain.Leg{MarketKey: "nope", Side: domain.SideHome})
	assert.ErrorIs(t, err, domain.ErrUnknownMarket)
}

func TestParseRejectsDuplicates(t *testing.T) {
	_, err := Parse(`
[[market]]
key = "a"
[[market]]
key = "a"
`)
	assert.Error(t, err)
}
