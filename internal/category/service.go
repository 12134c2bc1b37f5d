package category

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketly/internal/apperr"
	"github.com/MrJamesThe3rd/pocketly/internal/validate"
)

type Repository interface {
	FindMatch(ctx context.Context, ownerID uuid.UUID, description string) (string, error)
	CreateRule(ctx context.Context, r *Rule) error
	ListRules(ctx context.Context, ownerID uuid.UUID) ([]Rule, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type LearnParams struct {
	Pattern  string `json:"pattern" validate:"required,max=100"`
	Category string `json:"category" validate:"required"`
}

// Suggest categorises a single description. Returns Other if nothing matches.
func (s *Service) Suggest(ctx context.Context, ownerID uuid.UUID, description string) (string, error) {
	c, err := s.repo.FindMatch(ctx, ownerID, description)
	if err != nil {
		return "", err
	}

	if c != "" {
		return c, nil
	}

	return Keyword(description), nil
}

// Learn remembers that descriptions containing a pattern belong to a category.
func (s *Service) Learn(ctx context.Context, ownerID uuid.UUID, params LearnParams) (*Rule, error) {
	params.Pattern = strings.TrimSpace(params.Pattern)
	params.Category = strings.TrimSpace(params.Category)

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	if !Valid(params.Category) {
		return nil, apperr.Validation("Category must be one of: %s", strings.Join(All, ", "))
	}

	r := &Rule{OwnerID: ownerID, Pattern: params.Pattern, Category: params.Category}
	if err := s.repo.CreateRule(ctx, r); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *Service) Rules(ctx context.Context, ownerID uuid.UUID) ([]Rule, error) {
	return s.repo.ListRules(ctx, ownerID)
}

// Matcher loads the owner's rules once for categorising many descriptions.
func (s *Service) Matcher(ctx context.Context, ownerID uuid.UUID) (*Matcher, error) {
	rules, err := s.repo.ListRules(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("loading category rules: %w", err)
	}

	return NewMatcher(rules), nil
}
