package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/Dosada05/draft-league/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnockoutHandler_CreateMatchAndBracket(t *testing.T) {
	app := newTestApp(t)
	tour := app.tournament(t, models.FormatKnockout, 2)
	app.player(t, tour.ID, "ash", "", "pikachu")
	app.player(t, tour.ID, "gary", "", "eevee")
	base := "/tournament/" + tour.ID

	rec := app.do(t, http.MethodPost, base+"/ko", url.Values{
		"round": {"final"}, "slot": {"1"}, "player_one": {"ash"}, "player_two": {"gary"},
	}, true)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, base+"/ko/final/"), location)
	assert.True(t, strings.HasSuffix(location, "/select-pokemon"), location)

	rec = app.do(t, http.MethodGet, base+"/ko", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := document(t, rec)
	cell := doc.Find(`section[data-round="final"] .cell[data-slot="1"]`)
	require.Equal(t, 1, cell.Length())
	assert.Equal(t, "ashgary", cell.Find(".slot-player").Text())
	assert.Equal(t, location, cell.Find(".cell-link").AttrOr("href", ""))
	assert.Equal(t, 1, doc.Find("section.create-ko").Length())

	// посетитель видит сетку без ссылок, пока нет результата
	rec = app.do(t, http.MethodGet, base+"/ko", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	doc = document(t, rec)
	assert.Equal(t, 0, doc.Find(".cell-link").Length())
	assert.Equal(t, 0, doc.Find("section.create-ko").Length())
	assert.Equal(t, 0, doc.Find("form.seed").Length())
}

func TestKnockoutHandler_CreateMatchErrors(t *testing.T) {
	app := newTestApp(t)
	tour := app.tournament(t, models.FormatKnockout, 4)
	app.player(t, tour.ID, "ash", "", "pikachu")
	app.player(t, tour.ID, "gary", "", "eevee")
	app.player(t, tour.ID, "misty", "", "blastoise")
	base := "/tournament/" + tour.ID

	rec := app.do(t, http.MethodPost, base+"/ko", url.Values{
		"round": {"final"}, "slot": {"first"}, "player_one": {"ash"}, "player_two": {"gary"},
	}, true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	doc := document(t, rec)
	assert.Equal(t, "Please choose a slot", doc.Find(".field-error").Text())
	// выбранные значения сохраняются
	assert.Equal(t, "gary", doc.Find(`select[name="player_two"] option[selected]`).AttrOr("value", ""))

	rec = app.do(t, http.MethodPost, base+"/ko", url.Values{
		"round": {"final"}, "slot": {"1"}, "player_one": {"ash"}, "player_two": {"gary"},
	}, true)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.do(t, http.MethodPost, base+"/ko", url.Values{
		"round": {"final"}, "slot": {"1"}, "player_one": {"misty"}, "player_two": {"gary"},
	}, true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.NotEmpty(t, document(t, rec).Find(".form-error").Text())

	got, err := app.tournaments.Get(app.ctx, tour.ID)
	require.NoError(t, err)
	assert.Len(t, got.KoMatchesByRound(models.RoundFinal), 1)
}

func TestKnockoutHandler_LeagueHasNoBracket(t *testing.T) {
	app := newTestApp(t)
	tour := app.tournament(t, models.FormatLeague, 2)
	app.player(t, tour.ID, "ash", "")
	app.player(t, tour.ID, "gary", "")

	rec := app.do(t, http.MethodPost, "/tournament/"+tour.ID+"/ko", url.Values{
		"round": {"final"}, "slot": {"1"}, "player_one": {"ash"}, "player_two": {"gary"},
	}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	got, err := app.tournaments.Get(app.ctx, tour.ID)
	require.NoError(t, err)
	assert.Empty(t, got.KoMatches)
}
