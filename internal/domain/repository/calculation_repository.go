package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"calc_service/internal/common"
	"calc_service/internal/domain/model"
)

type CalculationRepository interface {
	Create(ctx context.Context, calc *model.Calculation) error
	FindByID(ctx context.Context, id string) (*model.Calculation, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]model.Calculation, int, error)
	Update(ctx context.Context, calc *model.Calculation) error
	Delete(ctx context.Context, id string) error
}

type pgCalculationRepository struct {
	db *sql.DB
}

func NewPgCalculationRepository(db *sql.DB) CalculationRepository {
	return &pgCalculationRepository{db: db}
}

func (r *pgCalculationRepository) Create(ctx context.Context, calc *model.Calculation) error {
	inputs, err := json.Marshal(calc.Inputs)
	if err != nil {
		return fmt.Errorf("pgCalculationRepository.Create marshal: %w", err)
	}
	query := `INSERT INTO calculations (id, user_id, type, inputs, result)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at, updated_at`
	err = r.db.QueryRowContext(ctx, query,
		calc.ID, calc.UserID, calc.Type, inputs, calc.Result,
	).Scan(&calc.CreatedAt, &calc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgCalculationRepository.Create: %w", err)
	}
	return nil
}

func (r *pgCalculationRepository) FindByID(ctx context.Context, id string) (*model.Calculation, error) {
	query := `SELECT id, user_id, type, inputs, result, created_at, updated_at
	          FROM calculations WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *pgCalculationRepository) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]model.Calculation, int, error) {
	var total int
	countQuery := `SELECT count(*) FROM calculations WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgCalculationRepository.ListByUser count: %w", err)
	}

	query := `SELECT id, user_id, type, inputs, result, created_at, updated_at
	          FROM calculations WHERE user_id = $1
	          ORDER BY created_at DESC
	          LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("pgCalculationRepository.ListByUser: %w", err)
	}
	defer rows.Close()

	calcs := []model.Calculation{}
	for rows.Next() {
		var calc model.Calculation
		var inputs []byte
		err := rows.Scan(
			&calc.ID, &calc.UserID, &calc.Type, &inputs, &calc.Result,
			&calc.CreatedAt, &calc.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("pgCalculationRepository.ListByUser scan: %w", err)
		}
		if err := json.Unmarshal(inputs, &calc.Inputs); err != nil {
			return nil, 0, fmt.Errorf("pgCalculationRepository.ListByUser unmarshal: %w", err)
		}
		calcs = append(calcs, calc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgCalculationRepository.ListByUser rows: %w", err)
	}
	return calcs, total, nil
}

func (r *pgCalculationRepository) Update(ctx context.Context, calc *model.Calculation) error {
	inputs, err := json.Marshal(calc.Inputs)
	if err != nil {
		return fmt.Errorf("pgCalculationRepository.Update marshal: %w", err)
	}
	query := `UPDATE calculations
	          SET type = $2, inputs = $3, result = $4, updated_at = now()
	          WHERE id = $1
	          RETURNING updated_at`
	err = r.db.QueryRowContext(ctx, query, calc.ID, calc.Type, inputs, calc.Result).Scan(&calc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		return fmt.Errorf("pgCalculationRepository.Update: %w", err)
	}
	return nil
}

func (r *pgCalculationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM calculations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgCalculationRepository.Delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgCalculationRepository) scanOne(row *sql.Row) (*model.Calculation, error) {
	calc := &model.Calculation{}
	var inputs []byte
	err := row.Scan(
		&calc.ID, &calc.UserID, &calc.Type, &inputs, &calc.Result,
		&calc.CreatedAt, &calc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgCalculationRepository.scanOne: %w", err)
	}
	if err := json.Unmarshal(inputs, &calc.Inputs); err != nil {
		return nil, fmt.Errorf("pgCalculationRepository.scanOne unmarshal: %w", err)
	}
	return calc, nil
}
