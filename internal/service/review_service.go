package service

import (
	"context"
	"time"

	"simplestore/internal/domain"
	"simplestore/internal/repository"

	"github.com/google/uuid"
)

// ReviewService defines the business logic for product reviews
type ReviewService interface {
	ListReviews(ctx context.Context) ([]*domain.Review, error)
	GetReview(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	CreateReview(ctx context.Context, userID, productID uuid.UUID, content string, rating int) (*domain.Review, error)
	UpdateReview(ctx context.Context, id uuid.UUID, content string, rating int) (*domain.Review, error)
	DeleteReview(ctx context.Context, id uuid.UUID) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
}

// NewReviewService creates a new instance of ReviewService
func NewReviewService(reviewRepo repository.ReviewRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo}
}

// ListReviews returns all reviews
func (s *reviewService) ListReviews(ctx context.Context) ([]*domain.Review, error) {
	return s.reviewRepo.List(ctx)
}

// GetReview returns one review by ID
func (s *reviewService) GetReview(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	return s.reviewRepo.FindByID(ctx, id)
}

// CreateReview persists a new review. An existing review for the same
// (user, product) pair is rejected up front, and the storage constraint
// catches the concurrent case: two simultaneous submissions can never
// both succeed.
func (s *reviewService) CreateReview(ctx context.Context, userID, productID uuid.UUID, content string, rating int) (*domain.Review, error) {
	exists, err := s.reviewRepo.ExistsByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repository.ErrDuplicateReview
	}

	now := time.Now()
	review := &domain.Review{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Content:   content,
		Rating:    rating,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// UpdateReview changes the content and rating of an existing review. The
// (user, product) pair of a review is immutable.
func (s *reviewService) UpdateReview(ctx context.Context, id uuid.UUID, content string, rating int) (*domain.Review, error) {
	review, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	review.Content = content
	review.Rating = rating
	review.UpdatedAt = time.Now()

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// DeleteReview removes a review
func (s *reviewService) DeleteReview(ctx context.Context, id uuid.UUID) error {
	return s.reviewRepo.Delete(ctx, id)
}
