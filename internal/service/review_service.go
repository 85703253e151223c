package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	apperrors "github.com/SatishMhobiya/e-commerce-backend/internal/errors"
	"github.com/SatishMhobiya/e-commerce-backend/internal/metrics"
	"github.com/SatishMhobiya/e-commerce-backend/internal/model"
	"github.com/SatishMhobiya/e-commerce-backend/internal/store"
)

// RoleChecker reports whether a user holds the admin role
type RoleChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// ReviewService keeps reviews and the rating fields derived from them. Every
// review mutation and the recomputation that follows it run under a lock on
// the product, so concurrent reviews of one product cannot overwrite each
// other's aggregate.
type ReviewService struct {
	reviews      store.ReviewStore
	products     store.ProductStore
	users        store.UserStore
	roles        RoleChecker
	invalidation *InvalidationService
	clock        clockwork.Clock
	metrics      *metrics.Metrics
	logger       *zap.Logger

	productLocks *keyedMutex
}

// NewReviewService creates a new review service
func NewReviewService(
	reviews store.ReviewStore,
	products store.ProductStore,
	users store.UserStore,
	roles RoleChecker,
	invalidation *InvalidationService,
	clock clockwork.Clock,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:      reviews,
		products:     products,
		users:        users,
		roles:        roles,
		invalidation: invalidation,
		clock:        clock,
		metrics:      m,
		logger:       logger,
		productLocks: newKeyedMutex(),
	}
}

// UpsertReview records the requester's rating of a product, replacing their
// earlier review if there is one. created reports whether a new review was
// stored.
func (s *ReviewService) UpsertReview(ctx context.Context, requesterID, productID string, rating int, comment string) (created bool, err error) {
	if requesterID == "" {
		return false, apperrors.Validation("Not Logged in")
	}
	if _, err := s.users.GetUser(ctx, requesterID); err != nil {
		return false, fromStore(err, "get user", "User not found")
	}
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return false, fromStore(err, "get product", "Product not found")
	}

	unlock := s.productLocks.Lock(productID)
	defer unlock()

	now := s.clock.Now()
	existing, err := s.reviews.FindReview(ctx, requesterID, productID)
	switch {
	case err == nil:
		existing.Rating = rating
		existing.Comment = comment
		existing.UpdatedAt = now
		if err := s.reviews.UpdateReview(ctx, existing); err != nil {
			return false, apperrors.Upstream("failed to update review", err)
		}
	case errors.Is(err, store.ErrNotFound):
		review := &model.Review{
			ID:        uuid.NewString(),
			User:      requesterID,
			Product:   productID,
			Rating:    rating,
			Comment:   comment,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.reviews.CreateReview(ctx, review); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return false, apperrors.Conflict("Review already exists", err)
			}
			return false, apperrors.Upstream("failed to create review", err)
		}
		created = true
	default:
		return false, apperrors.Upstream("failed to find review", err)
	}

	if err := s.recompute(ctx, productID); err != nil {
		return false, err
	}

	s.logger.Info("Saved review",
		zap.String("product_id", productID),
		zap.String("user_id", requesterID),
		zap.Int("rating", rating),
		zap.Bool("created", created))

	return created, nil
}

// DeleteReview removes a review. Only its author or an admin may do so.
func (s *ReviewService) DeleteReview(ctx context.Context, requesterID, reviewID string) error {
	if requesterID == "" {
		return apperrors.Validation("Not Logged in")
	}
	review, err := s.reviews.GetReview(ctx, reviewID)
	if err != nil {
		return fromStore(err, "get review", "Review not found")
	}
	if _, err := s.users.GetUser(ctx, requesterID); err != nil {
		return fromStore(err, "get user", "User not found")
	}

	if review.User != requesterID {
		admin, err := s.roles.IsAdmin(ctx, requesterID)
		if err != nil {
			return err
		}
		if !admin {
			return apperrors.Unauthorized("Not Authorized")
		}
	}

	unlock := s.productLocks.Lock(review.Product)
	defer unlock()

	if err := s.reviews.DeleteReview(ctx, reviewID); err != nil {
		return fromStore(err, "delete review", "Review not found")
	}

	if err := s.recompute(ctx, review.Product); err != nil {
		return err
	}

	s.logger.Info("Deleted review",
		zap.String("review_id", reviewID),
		zap.String("product_id", review.Product),
		zap.String("requester_id", requesterID))

	return nil
}

// ProductReviews lists the reviews of a product, oldest first
func (s *ReviewService) ProductReviews(ctx context.Context, productID string) ([]*model.Review, error) {
	reviews, err := s.reviews.ListReviewsByProduct(ctx, productID)
	if err != nil {
		return nil, apperrors.Upstream("failed to list reviews", err)
	}
	return reviews, nil
}

// recompute rewrites the product's rating fields from its reviews. The caller
// holds the product lock.
func (s *ReviewService) recompute(ctx context.Context, productID string) error {
	summary, err := s.reviews.RatingSummary(ctx, productID)
	if err != nil {
		return apperrors.Upstream("failed to aggregate ratings", err)
	}

	if err := s.products.UpdateProductRatings(ctx, productID, summary); err != nil {
		return fromStore(err, "update product ratings", "Product not found")
	}

	s.invalidation.Invalidate(ctx, model.ProductChanged{ProductIDs: []string{productID}})
	s.metrics.RecordRatingRecompute()

	s.logger.Debug("Recomputed product rating",
		zap.String("product_id", productID),
		zap.Float64("average", summary.AverageRating),
		zap.Int("reviews", summary.NumOfReviews))

	return nil
}
