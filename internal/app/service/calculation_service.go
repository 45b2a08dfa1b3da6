package service

import (
	"context"
	"fmt"

	"calc_service/internal/common"
	"calc_service/internal/domain/model"
	"calc_service/internal/domain/repository"

	"github.com/google/uuid"
)

type CalculationService struct {
	calcRepo repository.CalculationRepository
}

func NewCalculationService(calcRepo repository.CalculationRepository) *CalculationService {
	return &CalculationService{calcRepo: calcRepo}
}

type CreateCalculationRequest struct {
	Type   string    `json:"type"`
	Inputs []float64 `json:"inputs"`
}

type UpdateCalculationRequest struct {
	Type   string    `json:"type"`
	Inputs []float64 `json:"inputs"`
}

func (s *CalculationService) Create(ctx context.Context, userID string, req CreateCalculationRequest) (*model.Calculation, error) {
	calcType, err := model.ParseCalculationType(req.Type)
	if err != nil {
		return nil, err
	}
	result, err := model.Compute(calcType, req.Inputs)
	if err != nil {
		return nil, err
	}

	calc := &model.Calculation{
		ID:     uuid.NewString(),
		UserID: userID,
		Type:   calcType,
		Inputs: req.Inputs,
		Result: result,
	}
	if err := s.calcRepo.Create(ctx, calc); err != nil {
		return nil, fmt.Errorf("failed to create calculation: %w", err)
	}
	return calc, nil
}

func (s *CalculationService) Get(ctx context.Context, userID, calcID string) (*model.Calculation, error) {
	return s.findOwned(ctx, userID, calcID)
}

func (s *CalculationService) List(ctx context.Context, userID string, page, pageSize int) ([]model.Calculation, int, error) {
	calcs, total, err := s.calcRepo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list calculations: %w", err)
	}
	return calcs, total, nil
}

// Update replaces type and/or inputs and recomputes the stored result.
func (s *CalculationService) Update(ctx context.Context, userID, calcID string, req UpdateCalculationRequest) (*model.Calculation, error) {
	calc, err := s.findOwned(ctx, userID, calcID)
	if err != nil {
		return nil, err
	}

	if req.Type != "" {
		calcType, err := model.ParseCalculationType(req.Type)
		if err != nil {
			return nil, err
		}
		calc.Type = calcType
	}
	if req.Inputs != nil {
		calc.Inputs = req.Inputs
	}

	result, err := model.Compute(calc.Type, calc.Inputs)
	if err != nil {
		return nil, err
	}
	calc.Result = result

	if err := s.calcRepo.Update(ctx, calc); err != nil {
		return nil, fmt.Errorf("failed to update calculation: %w", err)
	}
	return calc, nil
}

func (s *CalculationService) Delete(ctx context.Context, userID, calcID string) error {
	if _, err := s.findOwned(ctx, userID, calcID); err != nil {
		return err
	}
	if err := s.calcRepo.Delete(ctx, calcID); err != nil {
		return fmt.Errorf("failed to delete calculation: %w", err)
	}
	return nil
}

// findOwned treats another user's calculation exactly like a missing
// one, so ownership cannot be probed.
func (s *CalculationService) findOwned(ctx context.Context, userID, calcID string) (*model.Calculation, error) {
	calc, err := s.calcRepo.FindByID(ctx, calcID)
	if err != nil {
		return nil, err
	}
	if calc.UserID != userID {
		return nil, common.ErrNotFound
	}
	return calc, nil
}
