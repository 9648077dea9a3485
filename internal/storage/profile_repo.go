package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const MainProfileKey = "main_user"

type ProfileRepo struct {
	db *sql.DB
}

func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) Get(ctx context.Context, key string) (*Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT key, level, current_xp, max_xp, xp_multiplier, level_grow_rate
		FROM profile
		WHERE key = ?
	`, key)

	var p Profile
	if err := row.Scan(&p.Key, &p.Level, &p.CurrentXP, &p.MaxXP, &p.XPMultiplier, &p.LevelGrowRate); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("profile get: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepo) GetOrCreateMain(ctx context.Context) (*Profile, error) {
	p, err := r.Get(ctx, MainProfileKey)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	if _, err := r.db.ExecContext(ctx, `INSERT INTO profile (key) VALUES (?)`, MainProfileKey); err != nil {
		return nil, wrapErr("profile insert", err)
	}
	return r.Get(ctx, MainProfileKey)
}

func (r *ProfileRepo) Update(ctx context.Context, p *Profile) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE profile
		SET level = ?, current_xp = ?, max_xp = ?, xp_multiplier = ?, level_grow_rate = ?
		WHERE key = ?
	`, p.Level, p.CurrentXP, p.MaxXP, p.XPMultiplier, p.LevelGrowRate, p.Key)
	if err != nil {
		return wrapErr("profile update", err)
	}
	return nil
}
