package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"clientportal/internal/domain"
	"clientportal/internal/port"
)

// ProfileInput is the DTO for saving a client profile.
type ProfileInput struct {
	Name        string `json:"name" binding:"required"`
	CompanyName string `json:"company_name" binding:"required"`
	Address     string `json:"address" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
}

// ProfileService defines the client profile contract.
type ProfileService interface {
	// Get returns nil, nil when the client has not saved a profile yet.
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error)
	Save(ctx context.Context, userID uuid.UUID, input ProfileInput) (*domain.UserProfile, error)
}

type profileService struct {
	repo port.ProfileRepository
}

// NewProfileService creates a new ProfileService implementation.
func NewProfileService(repo port.ProfileRepository) ProfileService {
	return &profileService{repo: repo}
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("profile.Get: %w", err)
	}
	return p, nil
}

func (s *profileService) Save(ctx context.Context, userID uuid.UUID, input ProfileInput) (*domain.UserProfile, error) {
	p := &domain.UserProfile{
		UserID:      userID,
		Name:        strings.TrimSpace(input.Name),
		CompanyName: strings.TrimSpace(input.CompanyName),
		Address:     strings.TrimSpace(input.Address),
		Email:       strings.TrimSpace(input.Email),
		Phone:       strings.TrimSpace(input.Phone),
	}
	required := []struct{ field, value string }{
		{"name", p.Name}, {"company_name", p.CompanyName}, {"address", p.Address}, {"email", p.Email},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, domain.NewValidationError(r.field, "is required")
		}
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("profile.Save: %w", err)
	}
	return p, nil
}
