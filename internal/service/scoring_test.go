package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/repository/dao"
)

func TestValidateTeamName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "Alpha", want: "Alpha"},
		{name: "trimmed", input: "  Die Füchse  ", want: "Die Füchse"},
		{name: "punctuation", input: "Rock & Roll (A/B) - Jr., O'Neil", want: "Rock & Roll (A/B) - Jr., O'Neil"},
		{name: "latin-1", input: "Équipe Zürich", want: "Équipe Zürich"},
		{name: "empty", input: "   ", wantErr: true},
		{name: "emoji", input: "Team 🍺", wantErr: true},
		{name: "markup", input: "<b>x</b>", wantErr: true},
		{name: "too long", input: strings.Repeat("a", 151), wantErr: true},
		{name: "max length", input: strings.Repeat("a", 150), want: strings.Repeat("a", 150)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateTeamName(tt.input)
			if tt.wantErr {
				var verr *domain.ValidationError
				assert.ErrorAs(t, err, &verr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ValidateTeamName("Team 🍺")
	assert.Contains(t, err.Error(), "digits")
}

func TestScoringService_AddTeam(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.activeEvent(t, "Demo")

	team, err := env.scoring.AddTeam(ctx, event.ID, " Alpha ")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", team.Name)
	assert.Zero(t, team.Shots)

	_, err = env.scoring.AddTeam(ctx, event.ID, "Alpha")
	assert.ErrorIs(t, err, ErrTeamNameExists)

	// names are case sensitive
	_, err = env.scoring.AddTeam(ctx, event.ID, "alpha")
	assert.NoError(t, err)

	// the same name may exist in another event
	other, err := env.events.CreateEvent(ctx, domain.Event{Name: "Other", ShotcounterEnabled: true})
	require.NoError(t, err)
	_, err = env.scoring.AddTeam(ctx, other.ID, "Alpha")
	assert.NoError(t, err)

	assert.Equal(t, 3, env.notifier.count())
}

func TestScoringService_AddShots(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.activeEvent(t, "Demo")

	team, err := env.scoring.AddTeam(ctx, event.ID, "Alpha")
	require.NoError(t, err)

	team, err = env.scoring.AddShots(ctx, event.ID, team.ID, 3, meta)
	require.NoError(t, err)
	assert.Equal(t, 3, team.Shots)

	logs, err := env.audit.ListShotLogs(ctx, event.ID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 3, logs[0].Amount)
	assert.Equal(t, "Alpha", logs[0].TeamName)
	assert.Equal(t, "terminal-test", logs[0].Actor)

	team, err = env.scoring.UpdateTeam(ctx, event.ID, team.ID, domain.TeamUpdate{Name: ptr("Beta")})
	require.NoError(t, err)
	assert.Equal(t, "Beta", team.Name)

	logs, err = env.audit.ListShotLogs(ctx, event.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", logs[0].TeamName)

	require.Len(t, env.publisher.shotLogs, 1)
}

func TestScoringService_AddShots_Invalid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.activeEvent(t, "Demo")

	team, err := env.scoring.AddTeam(ctx, event.ID, "Alpha")
	require.NoError(t, err)
	_, err = env.scoring.AddShots(ctx, event.ID, team.ID, 2, meta)
	require.NoError(t, err)

	for _, amount := range []int{0, -1, -100} {
		_, err = env.scoring.AddShots(ctx, event.ID, team.ID, amount, meta)
		assert.ErrorIs(t, err, ErrInvalidShotAmount)
	}

	_, err = env.scoring.AddShots(ctx, event.ID, 999, 1, meta)
	assert.ErrorIs(t, err, ErrTeamNotFound)

	// a team id from another event is not found either
	other, err := env.events.CreateEvent(ctx, domain.Event{Name: "Other", ShotcounterEnabled: true})
	require.NoError(t, err)
	_, err = env.scoring.AddShots(ctx, other.ID, team.ID, 1, meta)
	assert.ErrorIs(t, err, ErrTeamNotFound)

	teams, err := env.scoring.Teams(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, teams[0].Shots)
	assert.EqualValues(t, 1, env.count(t, &dao.ShotLog{}, ""))
}

func TestScoringService_AddShots_Concurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.activeEvent(t, "Demo")

	team, err := env.scoring.AddTeam(ctx, event.ID, "Alpha")
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	for i := 1; i <= workers; i++ {
		wg.Add(1)
		go func(amount int) {
			defer wg.Done()
			_, err := env.scoring.AddShots(ctx, event.ID, team.ID, amount, meta)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	team, err = env.scoring.UpdateTeam(ctx, event.ID, team.ID, domain.TeamUpdate{})
	require.NoError(t, err)
	assert.Equal(t, workers*(workers+1)/2, team.Shots)
	assert.EqualValues(t, workers, env.count(t, &dao.ShotLog{}, ""))
}

func TestScoringService_UpdateTeam(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.activeEvent(t, "Demo")

	alpha, err := env.scoring.AddTeam(ctx, event.ID, "Alpha")
	require.NoError(t, err)
	_, err = env.scoring.AddTeam(ctx, event.ID, "Beta")
	require.NoError(t, err)

	_, err = env.scoring.UpdateTeam(ctx, event.ID, alpha.ID, domain.TeamUpdate{Name: ptr("Beta")})
	assert.ErrorIs(t, err, ErrTeamNameExists)

	_, err = env.scoring.UpdateTeam(ctx, event.ID, alpha.ID, domain.TeamUpdate{Shots: ptr(-1)})
	assert.ErrorIs(t, err, ErrInvalidShotCount)

	_, err = env.scoring.UpdateTeam(ctx, event.ID, alpha.ID, domain.TeamUpdate{Name: ptr("<script>")})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	// renaming to its own name is not a conflict
	updated, err := env.scoring.UpdateTeam(ctx, event.ID, alpha.ID, domain.TeamUpdate{Name: ptr("Alpha"), Shots: ptr(12)})
	require.NoError(t, err)
	assert.Equal(t, "Alpha", updated.Name)
	assert.Equal(t, 12, updated.Shots)

	updated, err = env.scoring.UpdateTeam(ctx, event.ID, alpha.ID, domain.TeamUpdate{Shots: ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Shots)

	_, err = env.scoring.UpdateTeam(ctx, event.ID, 999, domain.TeamUpdate{Shots: ptr(1)})
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestScoringService_DeleteTeam(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.activeEvent(t, "Demo")

	team, err := env.scoring.AddTeam(ctx, event.ID, "Alpha")
	require.NoError(t, err)
	_, err = env.scoring.AddShots(ctx, event.ID, team.ID, 4, meta)
	require.NoError(t, err)

	require.NoError(t, env.scoring.DeleteTeam(ctx, event.ID, team.ID))

	logs, err := env.audit.ListShotLogs(ctx, event.ID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].TeamID)
	assert.Equal(t, "Alpha", logs[0].TeamName)

	assert.ErrorIs(t, env.scoring.DeleteTeam(ctx, event.ID, team.ID), ErrTeamNotFound)
}

func TestScoringService_Leaderboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.activeEvent(t, "Demo")

	for name, shots := range map[string]int{"A": 5, "B": 10, "C": 5} {
		team, err := env.scoring.AddTeam(ctx, event.ID, name)
		require.NoError(t, err)
		_, err = env.scoring.AddShots(ctx, event.ID, team.ID, shots, meta)
		require.NoError(t, err)
	}

	teams, err := env.scoring.Leaderboard(ctx, event, 0)
	require.NoError(t, err)

	names := make([]string, 0, len(teams))
	for _, team := range teams {
		names = append(names, team.Name)
	}
	assert.Equal(t, []string{"B", "A", "C"}, names)

	teams, err = env.scoring.Leaderboard(ctx, event, 2)
	require.NoError(t, err)
	assert.Len(t, teams, 2)

	event.ShotcounterSettings.LeaderboardLimit = 1
	teams, err = env.scoring.Leaderboard(ctx, event, 0)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "B", teams[0].Name)
}
