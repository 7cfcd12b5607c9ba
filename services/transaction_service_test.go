package services

import (
	"testing"

	"github.com/Dosada05/draft-league/models"
	"github.com/Dosada05/draft-league/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionService_Transfer(t *testing.T) {
	env := newTestEnv(t)
	tour := env.tournament(t, models.FormatLeague, 2)
	ash := env.player(t, tour.ID, "ash", "", "pikachu", "charizard")
	gary := env.player(t, tour.ID, "gary", "", "eevee")
	env.playMatch(t, tour.ID, ash, gary)

	tx, err := env.transactions.Apply(env.ctx, tour.ID, TransactionInput{PlayerID: ash.ID, Type: models.TransactionTransfer, Out: "pikachu", In: "raichu"})
	require.NoError(t, err)
	assert.Equal(t, "ash", tx.PlayerName)
	assert.Equal(t, "raichu", tx.In)

	got, err := env.players.GetPlayer(env.ctx, tour.ID, ash.ID)
	require.NoError(t, err)
	assert.Len(t, got.Pokemon, 2)
	require.Len(t, got.PreviousPokemon, 1)
	assert.Equal(t, 6, got.PreviousPokemon[0].Record.Kills)
	assert.Equal(t, 6, scoring.PlayerTotals(*got).Kills, "archived kills still count")

	_, err = env.transactions.Apply(env.ctx, tour.ID, TransactionInput{PlayerID: ash.ID, Type: models.TransactionTransfer, Out: "charizard", In: "missingno"})
	assert.ErrorIs(t, err, ErrPokemonNotFound)

	_, err = env.transactions.Apply(env.ctx, tour.ID, TransactionInput{PlayerID: ash.ID, Type: "trade", Out: "a", In: "b"})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestTransactionService_TeraCaptainAndCap(t *testing.T) {
	env := newTestEnv(t)
	tour := env.tournament(t, models.FormatLeague, 2)
	ash := env.player(t, tour.ID, "ash", "", "pikachu", "eevee")

	for i := 0; i < scoring.MaxTransactions; i++ {
		out, in := "pikachu", "eevee"
		if i%2 == 1 {
			out, in = in, out
		}
		_, err := env.transactions.Apply(env.ctx, tour.ID, TransactionInput{PlayerID: ash.ID, Type: models.TransactionTeraCaptain, Out: out, In: in})
		require.NoError(t, err, "transaction %d", i)
	}

	_, err := env.transactions.Apply(env.ctx, tour.ID, TransactionInput{PlayerID: ash.ID, Type: models.TransactionTeraCaptain, Out: "eevee", In: "pikachu"})
	assert.ErrorIs(t, err, scoring.ErrNoTransactionsRemaining)

	txLog, err := env.transactions.List(env.ctx, tour.ID)
	require.NoError(t, err)
	assert.Len(t, txLog.Transactions, scoring.MaxTransactions)
	assert.Equal(t, 0, txLog.Remaining["ash"])
	assert.Equal(t, models.TransactionTeraCaptain, txLog.Transactions[0].Type)
}
