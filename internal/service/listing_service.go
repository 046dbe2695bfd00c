package service

import (
	"context"
	"fmt"
	"time"

	"donut-trade-backend/internal/core/domain"
	"donut-trade-backend/internal/core/ports"
	"donut-trade-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const catalogCacheTTL = 30 * time.Second

// ListingServiceImpl implements ports.ListingService.
type ListingServiceImpl struct {
	listingRepo ports.ListingRepository
	transactor  ports.DBTransactor
	cache       ports.CatalogCache   // nil = caching disabled
	publisher   ports.EventPublisher // nil = notifications disabled
	log         zerolog.Logger
}

// NewListingService creates a new ListingServiceImpl.
func NewListingService(
	listingRepo ports.ListingRepository,
	transactor ports.DBTransactor,
	cache ports.CatalogCache,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) *ListingServiceImpl {
	return &ListingServiceImpl{
		listingRepo: listingRepo,
		transactor:  transactor,
		cache:       cache,
		publisher:   publisher,
		log:         log,
	}
}

// Create publishes a new active listing.
func (s *ListingServiceImpl) Create(ctx context.Context, req ports.CreateListingRequest) (*domain.Listing, error) {
	if req.Price <= 0 || req.Quantity <= 0 {
		return nil, apperror.ErrInvalidListing()
	}

	now := time.Now().UTC()
	listing := &domain.Listing{
		ID:          uuid.New(),
		SellerID:    req.SellerID,
		Title:       req.Title,
		Description: req.Description,
		ItemType:    req.ItemType,
		ItemName:    req.ItemName,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Status:      domain.ListingStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create listing: %w", err))
	}

	s.invalidateCatalog(ctx)
	s.notifyListing(ctx, listing.ID, listing.Status)

	s.log.Info().
		Str("listing_id", listing.ID.String()).
		Str("seller_id", req.SellerID.String()).
		Int64("price", req.Price).
		Msg("listing created")

	return listing, nil
}

// Get returns a single listing by ID.
func (s *ListingServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get listing: %w", err))
	}
	if listing == nil {
		return nil, apperror.ErrNotFound("Listing")
	}
	return listing, nil
}

// BrowseActive serves the public catalog. Cache hits skip the database;
// the view may trail a concurrent purchase by up to the cache TTL.
func (s *ListingServiceImpl) BrowseActive(ctx context.Context) ([]domain.Listing, error) {
	if s.cache != nil {
		cached, err := s.cache.GetActive(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("catalog cache read failed, falling back to database")
		} else if cached != nil {
			return cached, nil
		}
	}

	listings, err := s.listingRepo.ListActive(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list active listings: %w", err))
	}

	if s.cache != nil {
		if err := s.cache.SetActive(ctx, listings, catalogCacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("catalog cache write failed")
		}
	}

	return listings, nil
}

// ListBySeller returns all listings owned by sellerID, any status.
func (s *ListingServiceImpl) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.Listing, error) {
	listings, err := s.listingRepo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list seller listings: %w", err))
	}
	return listings, nil
}

// Withdraw cancels an active listing. Only the owning seller may withdraw,
// and only while the listing is active: a reserved (pending) listing is
// under escrow and stays put.
func (s *ListingServiceImpl) Withdraw(ctx context.Context, listingID, sellerID uuid.UUID) error {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get listing: %w", err))
	}
	if listing == nil {
		return apperror.ErrNotFound("Listing")
	}
	if listing.SellerID != sellerID {
		return apperror.ErrNotOwner()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	withdrawn, err := s.listingRepo.UpdateStatus(ctx, dbTx, listingID, domain.ListingStatusActive, domain.ListingStatusCancelled)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("withdraw listing: %w", err))
	}
	if !withdrawn {
		return apperror.ErrInvalidState("Listing")
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.invalidateCatalog(ctx)
	s.notifyListing(ctx, listingID, domain.ListingStatusCancelled)

	s.log.Info().
		Str("listing_id", listingID.String()).
		Str("seller_id", sellerID.String()).
		Msg("listing withdrawn")

	return nil
}

func (s *ListingServiceImpl) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate catalog cache")
	}
}

func (s *ListingServiceImpl) notifyListing(ctx context.Context, listingID uuid.UUID, status domain.ListingStatus) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, domain.SubjectListingChanged, domain.ListingChangedEvent{
		ListingID:  listingID,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("listing_id", listingID.String()).Msg("failed to publish listing event")
	}
}
