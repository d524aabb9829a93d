package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"travel/internal/domain"
	"travel/internal/redis"
	"travel/internal/repository"
)

// ListingService handles listing operations with a Redis read-through cache.
type ListingService struct {
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
	cache       redis.ListingCache
	logger      *zap.Logger
}

// NewListingService creates a new ListingService. cache may be nil.
func NewListingService(
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	cache redis.ListingCache,
	logger *zap.Logger,
) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		userRepo:    userRepo,
		cache:       cache,
		logger:      logger.Named("listing"),
	}
}

// ListingInput contains the writable fields of a listing.
type ListingInput struct {
	HostID        string
	Title         string
	Description   string
	PricePerNight decimal.Decimal
}

func (s *ListingService) validate(ctx context.Context, in *ListingInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return ErrInvalidTitle
	}

	if !in.PricePerNight.IsPositive() {
		return ErrInvalidPrice
	}

	if in.HostID == "" {
		return ErrInvalidUserID
	}

	_, err := s.userRepo.GetByID(ctx, in.HostID)
	return err
}

// CreateListing adds a new listing.
func (s *ListingService) CreateListing(ctx context.Context, in ListingInput) (*domain.Listing, error) {
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	listing := &domain.Listing{
		ID:            uuid.New().String(),
		HostID:        in.HostID,
		Title:         in.Title,
		Description:   in.Description,
		PricePerNight: in.PricePerNight.Round(2),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	return listing, nil
}

// GetListing retrieves a listing, serving from cache when possible.
func (s *ListingService) GetListing(ctx context.Context, listingID string) (*domain.Listing, error) {
	if listingID == "" {
		return nil, ErrInvalidListingID
	}

	if s.cache != nil {
		cached, err := s.cache.GetListing(ctx, listingID)
		if err != nil {
			s.logger.Debug("listing cache read failed", zap.String("listing_id", listingID), zap.Error(err))
		} else if cached != nil {
			if listing, err := fromCachedListing(cached); err == nil {
				return listing, nil
			}
		}
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.SetListing(ctx, toCachedListing(listing))
	}

	return listing, nil
}

// ListListings retrieves all listings.
func (s *ListingService) ListListings(ctx context.Context) ([]*domain.Listing, error) {
	return s.listingRepo.GetAll(ctx)
}

// UpdateListing replaces the writable fields of a listing.
func (s *ListingService) UpdateListing(ctx context.Context, listingID string, in ListingInput) (*domain.Listing, error) {
	if listingID == "" {
		return nil, ErrInvalidListingID
	}

	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	listing.HostID = in.HostID
	listing.Title = in.Title
	listing.Description = in.Description
	listing.PricePerNight = in.PricePerNight.Round(2)
	listing.UpdatedAt = time.Now().UTC()

	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}

	s.invalidate(ctx, listingID)
	return listing, nil
}

// DeleteListing removes a listing. Listings referenced by bookings are kept
// and repository.ErrConflict is returned.
func (s *ListingService) DeleteListing(ctx context.Context, listingID string) error {
	if listingID == "" {
		return ErrInvalidListingID
	}

	if err := s.listingRepo.Delete(ctx, listingID); err != nil {
		return err
	}

	s.invalidate(ctx, listingID)
	return nil
}

func (s *ListingService) invalidate(ctx context.Context, listingID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateListing(ctx, listingID); err != nil {
		s.logger.Warn("listing cache invalidation failed", zap.String("listing_id", listingID), zap.Error(err))
	}
}

func toCachedListing(l *domain.Listing) *redis.CachedListing {
	return &redis.CachedListing{
		ID:            l.ID,
		HostID:        l.HostID,
		Title:         l.Title,
		Description:   l.Description,
		PricePerNight: l.PricePerNight.String(),
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func fromCachedListing(c *redis.CachedListing) (*domain.Listing, error) {
	price, err := decimal.NewFromString(c.PricePerNight)
	if err != nil {
		return nil, err
	}
	return &domain.Listing{
		ID:            c.ID,
		HostID:        c.HostID,
		Title:         c.Title,
		Description:   c.Description,
		PricePerNight: price,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}, nil
}
