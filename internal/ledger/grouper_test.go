package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samfeldman824/putr/internal/ledger"
	"github.com/samfeldman824/putr/internal/models"
)

func session(nickname string, netCents int64) models.Session {
	return models.Session{PlayerNickname: nickname, NetCents: netCents, BuyInCents: 100}
}

func TestGroup_PartitionPreservesOrder(t *testing.T) {
	sessions := []models.Session{
		session("alice", 50),
		session("bob", -30),
		session("alice", 20),
		session("carol", 0),
		session("bob", 10),
	}

	groups := ledger.Group(sessions)

	assert.Equal(t, []string{"alice", "bob", "carol"}, groups.Order)
	assert.Len(t, groups.ByNickname["alice"], 2)
	assert.Len(t, groups.ByNickname["bob"], 2)
	assert.Len(t, groups.ByNickname["carol"], 1)

	// Concatenating the groups in first-seen order reconstructs the input.
	var rebuilt []models.Session
	for _, nickname := range groups.Order {
		rebuilt = append(rebuilt, groups.ByNickname[nickname]...)
	}
	require.Len(t, rebuilt, len(sessions))
	assert.ElementsMatch(t, sessions, rebuilt)

	// Per-player relative order is the original file order.
	assert.Equal(t, int64(50), groups.ByNickname["alice"][0].NetCents)
	assert.Equal(t, int64(20), groups.ByNickname["alice"][1].NetCents)
}

func TestGroup_Empty(t *testing.T) {
	groups := ledger.Group(nil)
	assert.Empty(t, groups.Order)
	assert.Empty(t, groups.ByNickname)
}

func TestNetTotals(t *testing.T) {
	groups := ledger.Group([]models.Session{
		session("alice", 5000),
		session("alice", -2500),
		session("bob", -1000),
	})

	totals := groups.NetTotals()
	assert.InDelta(t, 25.0, totals["alice"], 1e-9)
	assert.InDelta(t, -10.0, totals["bob"], 1e-9)
}

func TestExtremeNicknames(t *testing.T) {
	upMost, downMost := ledger.ExtremeNicknames(map[string]float64{
		"alice": 25,
		"bob":   -10,
		"carol": 25,
		"dave":  0,
	})

	assert.ElementsMatch(t, []string{"alice", "carol"}, upMost)
	assert.Equal(t, []string{"bob"}, downMost)
}

func TestExtremeNicknames_Empty(t *testing.T) {
	upMost, downMost := ledger.ExtremeNicknames(nil)
	assert.Empty(t, upMost)
	assert.Empty(t, downMost)
}

func TestExtremeNicknames_SinglePlayer(t *testing.T) {
	upMost, downMost := ledger.ExtremeNicknames(map[string]float64{"alice": -5})
	assert.Equal(t, []string{"alice"}, upMost)
	assert.Equal(t, []string{"alice"}, downMost)
}
