package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/repository"
)

const (
	maxTeamNameLength = 150
	teamNameAllowed   = "letters (including accented Latin-1 letters), digits, spaces and . , ' & ( ) / -"
)

var teamNamePattern = regexp2.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿ0-9 .,'&()/\-]+$`, regexp2.None)

var (
	ErrTeamNotFound   = repository.ErrTeamNotFound
	ErrTeamNameExists = repository.ErrTeamNameExists

	ErrInvalidShotAmount = domain.NewValidationError("shot amount must be greater than zero")
	ErrInvalidShotCount  = domain.NewValidationError("shots must not be negative")
)

type TeamRepository interface {
	Create(ctx context.Context, team domain.Team) (domain.Team, error)
	FindByID(ctx context.Context, eventID, id uint) (domain.Team, error)
	ExistsByName(ctx context.Context, eventID uint, name string) (bool, error)
	Leaderboard(ctx context.Context, eventID uint, limit int) ([]domain.Team, error)
	AddShots(ctx context.Context, eventID, teamID uint, amount int, meta domain.RequestMeta) (domain.Team, domain.ShotLog, error)
	Update(ctx context.Context, eventID, teamID uint, update domain.TeamUpdate) (domain.Team, error)
	Delete(ctx context.Context, eventID, teamID uint) (domain.Team, error)
}

// Notifier tells connected scoreboards of an event to refresh.
type Notifier interface {
	NotifyLeaderboard(eventID uint)
}

type ScoringService struct {
	repo      TeamRepository
	notifier  Notifier
	publisher AuditPublisher
}

func NewScoringService(repo TeamRepository, notifier Notifier, publisher AuditPublisher) *ScoringService {
	return &ScoringService{
		repo:      repo,
		notifier:  notifier,
		publisher: publisher,
	}
}

// ValidateTeamName trims name and checks its length and character set.
func ValidateTeamName(name string) (string, error) {
	name = strings.TrimSpace(name)

	err := validation.Validate(name,
		validation.Required.Error("team name must not be empty"),
		validation.RuneLength(1, maxTeamNameLength).Error(fmt.Sprintf("team name must be at most %d characters", maxTeamNameLength)),
	)
	if err != nil {
		return "", domain.NewValidationError("%s", err.Error())
	}

	ok, err := teamNamePattern.MatchString(name)
	if err != nil || !ok {
		return "", domain.NewValidationError("team name may only contain %s", teamNameAllowed)
	}

	return name, nil
}

func (s *ScoringService) AddTeam(ctx context.Context, eventID uint, name string) (domain.Team, error) {
	name, err := ValidateTeamName(name)
	if err != nil {
		return domain.Team{}, err
	}

	exists, err := s.repo.ExistsByName(ctx, eventID, name)
	if err != nil {
		return domain.Team{}, fmt.Errorf("s.repo.ExistsByName -> %w", err)
	}
	if exists {
		return domain.Team{}, ErrTeamNameExists
	}

	team, err := s.repo.Create(ctx, domain.Team{EventID: eventID, Name: name})
	if err != nil {
		if errors.Is(err, repository.ErrTeamNameExists) {
			return domain.Team{}, ErrTeamNameExists
		}

		return domain.Team{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.notifier.NotifyLeaderboard(eventID)

	return team, nil
}

// AddShots increments the team's counter and records the shot log in one
// transaction. Concurrent calls never lose an increment.
func (s *ScoringService) AddShots(ctx context.Context, eventID, teamID uint, amount int, meta domain.RequestMeta) (domain.Team, error) {
	if amount <= 0 {
		return domain.Team{}, ErrInvalidShotAmount
	}

	team, log, err := s.repo.AddShots(ctx, eventID, teamID, amount, meta)
	if err != nil {
		if errors.Is(err, repository.ErrTeamNotFound) {
			return domain.Team{}, ErrTeamNotFound
		}

		return domain.Team{}, fmt.Errorf("s.repo.AddShots -> %w", err)
	}

	s.notifier.NotifyLeaderboard(eventID)
	s.publisher.PublishShotLog(ctx, log)

	return team, nil
}

// UpdateTeam renames a team and/or sets its shots to an absolute value.
func (s *ScoringService) UpdateTeam(ctx context.Context, eventID, teamID uint, update domain.TeamUpdate) (domain.Team, error) {
	if update.Name != nil {
		name, err := ValidateTeamName(*update.Name)
		if err != nil {
			return domain.Team{}, err
		}
		update.Name = &name
	}
	if update.Shots != nil && *update.Shots < 0 {
		return domain.Team{}, ErrInvalidShotCount
	}

	team, err := s.repo.Update(ctx, eventID, teamID, update)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTeamNotFound):
			return domain.Team{}, ErrTeamNotFound
		case errors.Is(err, repository.ErrTeamNameExists):
			return domain.Team{}, ErrTeamNameExists
		}

		return domain.Team{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	s.notifier.NotifyLeaderboard(eventID)

	return team, nil
}

// DeleteTeam removes a team. Its shot logs remain with the team detached.
func (s *ScoringService) DeleteTeam(ctx context.Context, eventID, teamID uint) error {
	if _, err := s.repo.Delete(ctx, eventID, teamID); err != nil {
		if errors.Is(err, repository.ErrTeamNotFound) {
			return ErrTeamNotFound
		}

		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	s.notifier.NotifyLeaderboard(eventID)

	return nil
}

// Leaderboard orders teams by shots descending, then name. A non-positive
// limit falls back to the event's configured leaderboard size.
func (s *ScoringService) Leaderboard(ctx context.Context, event domain.Event, limit int) ([]domain.Team, error) {
	if limit <= 0 {
		limit = event.ShotcounterSettings.LeaderboardLimit
	}
	if limit <= 0 {
		limit = domain.DefaultLeaderboardLimit
	}

	teams, err := s.repo.Leaderboard(ctx, event.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("s.repo.Leaderboard -> %w", err)
	}

	return teams, nil
}

// Teams lists every team of the event in leaderboard order.
func (s *ScoringService) Teams(ctx context.Context, eventID uint) ([]domain.Team, error) {
	teams, err := s.repo.Leaderboard(ctx, eventID, 0)
	if err != nil {
		return nil, fmt.Errorf("s.repo.Leaderboard -> %w", err)
	}

	return teams, nil
}
