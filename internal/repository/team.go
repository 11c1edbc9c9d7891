package repository

import (
	"context"
	"fmt"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/repository/dao"
)

var (
	ErrTeamNotFound   = dao.ErrTeamNotFound
	ErrTeamNameExists = dao.ErrTeamNameExists
)

type TeamDAO interface {
	Insert(ctx context.Context, team dao.Team) (dao.Team, error)
	FindByID(ctx context.Context, eventID, id uint) (dao.Team, error)
	ExistsByName(ctx context.Context, eventID uint, name string) (bool, error)
	Leaderboard(ctx context.Context, eventID uint, limit int) ([]dao.Team, error)
	AddShots(ctx context.Context, eventID, teamID uint, amount int, log dao.ShotLog) (dao.Team, dao.ShotLog, error)
	Update(ctx context.Context, eventID, teamID uint, name *string, shots *int) (dao.Team, error)
	Delete(ctx context.Context, eventID, teamID uint) (dao.Team, error)
}

type TeamRepository struct {
	dao TeamDAO
}

func NewTeamRepository(dao TeamDAO) *TeamRepository {
	return &TeamRepository{
		dao: dao,
	}
}

func (r *TeamRepository) Create(ctx context.Context, team domain.Team) (domain.Team, error) {
	created, err := r.dao.Insert(ctx, dao.Team{
		EventID: team.EventID,
		Name:    team.Name,
		Shots:   team.Shots,
	})
	if err != nil {
		return domain.Team{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return teamToDomain(created), nil
}

func (r *TeamRepository) FindByID(ctx context.Context, eventID, id uint) (domain.Team, error) {
	team, err := r.dao.FindByID(ctx, eventID, id)
	if err != nil {
		return domain.Team{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return teamToDomain(team), nil
}

func (r *TeamRepository) ExistsByName(ctx context.Context, eventID uint, name string) (bool, error) {
	exists, err := r.dao.ExistsByName(ctx, eventID, name)
	if err != nil {
		return false, fmt.Errorf("r.dao.ExistsByName -> %w", err)
	}

	return exists, nil
}

func (r *TeamRepository) Leaderboard(ctx context.Context, eventID uint, limit int) ([]domain.Team, error) {
	teams, err := r.dao.Leaderboard(ctx, eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.Leaderboard -> %w", err)
	}

	return teamsToDomain(teams), nil
}

func (r *TeamRepository) AddShots(ctx context.Context, eventID, teamID uint, amount int, meta domain.RequestMeta) (domain.Team, domain.ShotLog, error) {
	team, log, err := r.dao.AddShots(ctx, eventID, teamID, amount, dao.ShotLog{
		Actor:     meta.Actor,
		UserAgent: meta.UserAgent,
	})
	if err != nil {
		return domain.Team{}, domain.ShotLog{}, fmt.Errorf("r.dao.AddShots -> %w", err)
	}

	return teamToDomain(team), shotLogToDomain(log), nil
}

func (r *TeamRepository) Update(ctx context.Context, eventID, teamID uint, update domain.TeamUpdate) (domain.Team, error) {
	team, err := r.dao.Update(ctx, eventID, teamID, update.Name, update.Shots)
	if err != nil {
		return domain.Team{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return teamToDomain(team), nil
}

func (r *TeamRepository) Delete(ctx context.Context, eventID, teamID uint) (domain.Team, error) {
	team, err := r.dao.Delete(ctx, eventID, teamID)
	if err != nil {
		return domain.Team{}, fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return teamToDomain(team), nil
}

func teamToDomain(t dao.Team) domain.Team {
	return domain.Team{
		ID:        t.ID,
		EventID:   t.EventID,
		Name:      t.Name,
		Shots:     t.Shots,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func teamsToDomain(teams []dao.Team) []domain.Team {
	result := make([]domain.Team, 0, len(teams))
	for _, t := range teams {
		result = append(result, teamToDomain(t))
	}

	return result
}
