package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-studio-api/internal/dto"
	"github.com/noah-isme/dance-studio-api/internal/models"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

const (
	hallListCacheKey = "halls:list"
	hallCachePattern = "halls:*"
)

type hallRepository interface {
	List(ctx context.Context) ([]models.Hall, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Hall, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Hall, error)
	MaxBookedCapacity(ctx context.Context, exec sqlx.ExtContext, hallID string) (int, error)
	Create(ctx context.Context, hall *models.Hall) error
	Update(ctx context.Context, exec sqlx.ExtContext, hall *models.Hall) error
}

// HallService manages studio halls. The hall list is served from cache.
type HallService struct {
	db        txProvider
	repo      hallRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHallService constructs a HallService.
func NewHallService(db txProvider, repo hallRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *HallService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HallService{db: db, repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns all halls ordered by number.
func (s *HallService) List(ctx context.Context) ([]models.Hall, error) {
	halls, err := readThrough(ctx, s.cache, hallListCacheKey, func(ctx context.Context) ([]models.Hall, error) {
		halls, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		if halls == nil {
			halls = []models.Hall{}
		}
		return halls, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list halls")
	}
	return halls, nil
}

// Get returns a hall by id.
func (s *HallService) Get(ctx context.Context, id string) (*models.Hall, error) {
	hall, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, storeError(err, "hall not found", "failed to load hall")
	}
	return hall, nil
}

// Create adds a hall; hall numbers are unique.
func (s *HallService) Create(ctx context.Context, req dto.CreateHallRequest) (*models.Hall, error) {
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid hall payload")
	}
	hall := &models.Hall{HallNumber: req.HallNumber, Capacity: req.Capacity, Description: req.Description}
	if err := s.repo.Create(ctx, hall); err != nil {
		return nil, storeError(err, "", "hall number already exists")
	}
	s.cache.Invalidate(ctx, hallCachePattern)
	return hall, nil
}

// Update patches a hall. Capacity may not drop below the seats already
// booked in any of its classes.
func (s *HallService) Update(ctx context.Context, id string, req dto.UpdateHallRequest) (*models.Hall, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid hall payload")
	}

	var hall *models.Hall
	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		hall, err = s.repo.LockByID(ctx, tx, id)
		if err != nil {
			return storeError(err, "hall not found", "failed to load hall")
		}
		if req.HallNumber != nil {
			hall.HallNumber = *req.HallNumber
		}
		if req.Description != nil {
			hall.Description = strings.TrimSpace(*req.Description)
		}
		if req.Capacity != nil && *req.Capacity < hall.Capacity {
			booked, err := s.repo.MaxBookedCapacity(ctx, tx, id)
			if err != nil {
				return storeError(err, "", "failed to check booked seats")
			}
			if booked > *req.Capacity {
				return appErrors.Clone(appErrors.ErrCapacityExceeded, "hall capacity below seats already booked")
			}
		}
		if req.Capacity != nil {
			hall.Capacity = *req.Capacity
		}
		if err := s.repo.Update(ctx, tx, hall); err != nil {
			return storeError(err, "", "hall number already exists")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, hallCachePattern)
	return hall, nil
}
