package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

const teamNameIndex = "idx_teams_event_name"

type Team struct {
	ID uint `gorm:"primaryKey"`

	EventID uint   `gorm:"not null;uniqueIndex:idx_teams_event_name"`
	Name    string `gorm:"not null;size:150;uniqueIndex:idx_teams_event_name"`
	Shots   int    `gorm:"not null;default:0"`

	ShotLogs []ShotLog `gorm:"constraint:OnDelete:SET NULL"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type TeamDAO struct {
	db *gorm.DB
}

func NewTeamDAO(db *gorm.DB) *TeamDAO {
	return &TeamDAO{
		db: db,
	}
}

func (d *TeamDAO) Insert(ctx context.Context, team Team) (Team, error) {
	result := d.db.WithContext(ctx).Omit("ShotLogs").Create(&team)
	if result.Error != nil {
		if isUniqueViolation(result.Error, teamNameIndex) {
			return Team{}, ErrTeamNameExists
		}

		return Team{}, result.Error
	}

	return team, nil
}

func (d *TeamDAO) FindByID(ctx context.Context, eventID, id uint) (Team, error) {
	return findTeam(d.db.WithContext(ctx), eventID, id)
}

func findTeam(db *gorm.DB, eventID, id uint) (Team, error) {
	var team Team

	result := db.Where("id = ? AND event_id = ?", id, eventID).First(&team)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Team{}, ErrTeamNotFound
		}

		return Team{}, result.Error
	}

	return team, nil
}

func (d *TeamDAO) ExistsByName(ctx context.Context, eventID uint, name string) (bool, error) {
	var count int64

	err := d.db.WithContext(ctx).Model(&Team{}).
		Where("event_id = ? AND name = ?", eventID, name).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Leaderboard lists teams by shots descending, ties by name. limit <= 0
// returns every team.
func (d *TeamDAO) Leaderboard(ctx context.Context, eventID uint, limit int) ([]Team, error) {
	var teams []Team

	query := d.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("shots DESC").
		Order("name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&teams).Error; err != nil {
		return nil, err
	}

	return teams, nil
}

// AddShots increments the counter relative to its stored value and appends
// the matching shot log in the same transaction.
func (d *TeamDAO) AddShots(ctx context.Context, eventID, teamID uint, amount int, log ShotLog) (Team, ShotLog, error) {
	var team Team

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Team{}).
			Where("id = ? AND event_id = ?", teamID, eventID).
			UpdateColumn("shots", gorm.Expr("shots + ?", amount))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTeamNotFound
		}

		var err error
		team, err = findTeam(tx, eventID, teamID)
		if err != nil {
			return err
		}

		log.EventID = eventID
		log.TeamID = &team.ID
		log.TeamName = team.Name
		log.Amount = amount

		return tx.Create(&log).Error
	})
	if err != nil {
		return Team{}, ShotLog{}, err
	}

	return team, log, nil
}

// Update applies the non-nil fields. A rename must stay unique within the
// event.
func (d *TeamDAO) Update(ctx context.Context, eventID, teamID uint, name *string, shots *int) (Team, error) {
	var team Team

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		team, err = findTeam(tx, eventID, teamID)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if name != nil && *name != team.Name {
			var count int64
			err = tx.Model(&Team{}).
				Where("event_id = ? AND name = ? AND id <> ?", eventID, *name, teamID).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				return ErrTeamNameExists
			}
			updates["name"] = *name
		}
		if shots != nil {
			updates["shots"] = *shots
		}
		if len(updates) == 0 {
			return nil
		}

		if err = tx.Model(&team).Updates(updates).Error; err != nil {
			return err
		}

		team, err = findTeam(tx, eventID, teamID)
		return err
	})
	if err != nil {
		if isUniqueViolation(err, teamNameIndex) {
			return Team{}, ErrTeamNameExists
		}
		return Team{}, err
	}

	return team, nil
}

// Delete removes a team. Its shot logs stay, detached from the team.
func (d *TeamDAO) Delete(ctx context.Context, eventID, teamID uint) (Team, error) {
	var team Team

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		team, err = findTeam(tx, eventID, teamID)
		if err != nil {
			return err
		}

		err = tx.Model(&ShotLog{}).
			Where("team_id = ?", teamID).
			Update("team_id", nil).Error
		if err != nil {
			return err
		}

		return tx.Delete(&Team{}, teamID).Error
	})
	if err != nil {
		return Team{}, err
	}

	return team, nil
}
