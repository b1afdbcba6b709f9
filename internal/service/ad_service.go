package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/VAIIYA/DISCHAN/internal/common"
	"github.com/VAIIYA/DISCHAN/internal/config"
	"github.com/VAIIYA/DISCHAN/internal/domain"
	"github.com/VAIIYA/DISCHAN/internal/repository"
	"github.com/VAIIYA/DISCHAN/pkg/cache"
	pkglogger "github.com/VAIIYA/DISCHAN/pkg/logger"
	"github.com/VAIIYA/DISCHAN/pkg/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// AdService books, activates and serves paid placements
type AdService interface {
	Pricing() []domain.AdPricing
	Create(ctx context.Context, req *domain.CreateAdRequest) (*domain.Ad, error)
	Availability(ctx context.Context, placement, month string) (*domain.AvailabilityResponse, error)
	Verify(ctx context.Context, adID, signature string) (*domain.Ad, error)
	Active(ctx context.Context, placement string) (*domain.Ad, error)
	ExpireAndReject(ctx context.Context) (expired, rejected int64, err error)
}

type adService struct {
	ads      repository.AdRepository
	receipts repository.PaymentRepository
	verifier PaymentVerifier
	cache    cache.Service
	cfg      config.AdsConfig
	validate *validator.Validate
	now      func() time.Time
}

// NewAdService creates a new AdService
func NewAdService(ads repository.AdRepository, receipts repository.PaymentRepository, verifier PaymentVerifier, cacheService cache.Service, cfg config.AdsConfig) AdService {
	return &adService{
		ads:      ads,
		receipts: receipts,
		verifier: verifier,
		cache:    cacheService,
		cfg:      cfg,
		validate: newValidator(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// BookingRange returns the inclusive [start, start+days-1] range of a booking
func BookingRange(start time.Time, days int) (time.Time, time.Time) {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, days-1)
}

// ExpandDays lists every calendar day of the inclusive range
func ExpandDays(start, end time.Time) []string {
	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(domain.DateLayout))
	}
	return days
}

// Pricing 패키지별 가격표
func (s *adService) Pricing() []domain.AdPricing {
	out := make([]domain.AdPricing, 0, len(s.cfg.Packages))
	for _, p := range s.cfg.Packages {
		out = append(out, domain.AdPricing{Days: p.Days, Header: p.Price, Footer: p.Price * s.cfg.FooterDiscount})
	}
	return out
}

// minimumPrice is the cheapest listed package covering days, or zero when
// no package is that long
func (s *adService) minimumPrice(placement domain.AdPlacement, days int) float64 {
	var best float64
	for _, p := range s.cfg.Packages {
		if p.Days != days {
			continue
		}
		price := p.Price
		if placement == domain.AdPlacementFooter {
			price *= s.cfg.FooterDiscount
		}
		if best == 0 || price < best {
			best = price
		}
	}
	return best
}

// Create 광고 예약 생성 (결제 대기 상태)
func (s *adService) Create(ctx context.Context, req *domain.CreateAdRequest) (*domain.Ad, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, common.Validation("create ad", "%s", validationMessage(err))
	}
	placement := domain.AdPlacement(req.Placement)
	startDay, err := time.Parse(domain.DateLayout, req.StartDate)
	if err != nil {
		return nil, common.Validation("create ad", "startDate must be YYYY-MM-DD")
	}
	if floor := s.minimumPrice(placement, req.Duration); req.Amount+amountTolerance < floor {
		return nil, common.Validation("create ad", "amount %.2f is below the %d day price %.2f", req.Amount, req.Duration, floor)
	}

	start, end := BookingRange(startDay, req.Duration)
	booked, err := s.ads.HasOverlap(ctx, placement, start, end)
	if err != nil {
		return nil, common.E(common.KindPersistence, "check availability", err)
	}
	if booked {
		return nil, common.ErrDatesBooked
	}

	now := s.now()
	ad := &domain.Ad{
		ID:               uuid.NewString(),
		Title:            strings.TrimSpace(req.Title),
		Link:             strings.TrimSpace(req.Link),
		ImageURL:         strings.TrimSpace(req.ImageURL),
		Placement:        placement,
		StartDate:        start,
		EndDate:          end,
		Amount:           req.Amount,
		Currency:         "USDC",
		Status:           domain.AdStatusPendingPayment,
		AdvertiserWallet: strings.TrimSpace(req.AdvertiserWallet),
		Email:            strings.TrimSpace(req.Email),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.ads.Create(ctx, ad); err != nil {
		return nil, common.E(common.KindPersistence, "create ad", err)
	}

	pkglogger.GetLogger().Info().
		Str("ad_id", ad.ID).
		Str("placement", string(placement)).
		Str("start", start.Format(domain.DateLayout)).
		Str("end", end.Format(domain.DateLayout)).
		Msg("ad booked, awaiting payment")
	return ad, nil
}

// Availability lists booked days of a month for a placement
func (s *adService) Availability(ctx context.Context, placement, month string) (*domain.AvailabilityResponse, error) {
	p := domain.AdPlacement(placement)
	if !p.Valid() {
		return nil, common.Validation("ad availability", "placement must be header or footer")
	}
	first, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, common.Validation("ad availability", "month must be YYYY-MM")
	}
	last := first.AddDate(0, 1, -1)

	ads, err := s.ads.ListBooked(ctx, p, first, last)
	if err != nil {
		return nil, common.E(common.KindPersistence, "ad availability", err)
	}

	set := map[string]struct{}{}
	for _, ad := range ads {
		from, to := ad.StartDate, ad.EndDate
		if from.Before(first) {
			from = first
		}
		if to.After(last) {
			to = last
		}
		for _, d := range ExpandDays(from, to) {
			set[d] = struct{}{}
		}
	}
	dates := make([]string, 0, len(set))
	for d := range set {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	return &domain.AvailabilityResponse{Placement: placement, Month: month, BookedDates: dates}, nil
}

// Verify checks the payment for an ad and activates it
func (s *adService) Verify(ctx context.Context, adID, signature string) (*domain.Ad, error) {
	signature = strings.TrimSpace(signature)
	if adID == "" || signature == "" {
		return nil, common.Validation("verify ad", "adId and signature are required")
	}
	ad, err := s.ads.FindByID(ctx, adID)
	if err != nil {
		return nil, err
	}

	used, err := s.receipts.IsUsed(ctx, signature)
	if err != nil {
		return nil, common.E(common.KindPersistence, "check signature", err)
	}
	if used {
		return nil, common.ErrSignatureUsed
	}

	ok, err := s.verifier.Verify(ctx, signature, ad.Amount)
	if err != nil {
		metrics.PaymentVerifications.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.PaymentVerifications.WithLabelValues(verifiedLabel(ok)).Inc()
	if !ok {
		return nil, common.ErrPaymentNotVerified
	}

	if err := s.ads.Activate(ctx, ad.ID, signature); err != nil {
		if common.KindOf(err) != common.KindInternal {
			return nil, err
		}
		return nil, common.E(common.KindPersistence, "activate ad", err)
	}
	if err := s.cache.InvalidateActiveAds(ctx); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("failed to invalidate active ad cache")
	}

	metrics.AdsActivated.Inc()
	pkglogger.GetLogger().Info().Str("ad_id", ad.ID).Str("signature", signature).Msg("ad activated")
	return s.ads.FindByID(ctx, ad.ID)
}

// Active returns the ad running today, or nil
func (s *adService) Active(ctx context.Context, placement string) (*domain.Ad, error) {
	p := domain.AdPlacement(placement)
	if !p.Valid() {
		return nil, common.Validation("active ad", "placement must be header or footer")
	}

	var cached struct {
		Ad *domain.Ad `json:"ad"`
	}
	if err := s.cache.GetActiveAd(ctx, placement, &cached); err == nil {
		return cached.Ad, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		pkglogger.GetLogger().Warn().Err(err).Msg("active ad cache read failed")
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	ad, err := s.ads.FindActive(ctx, p, today)
	if err != nil {
		return nil, fmt.Errorf("find active ad: %w", err)
	}

	cached.Ad = ad
	if err := s.cache.SetActiveAd(ctx, placement, cached); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("active ad cache write failed")
	}
	return ad, nil
}

// ExpireAndReject expires finished bookings and rejects stale unpaid ones
func (s *adService) ExpireAndReject(ctx context.Context) (int64, int64, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	expired, err := s.ads.ExpireEnded(ctx, today)
	if err != nil {
		return 0, 0, fmt.Errorf("expire ads: %w", err)
	}
	rejected, err := s.ads.RejectStalePending(ctx, now.Add(-s.cfg.PendingTTL))
	if err != nil {
		return expired, 0, fmt.Errorf("reject stale ads: %w", err)
	}
	if expired > 0 || rejected > 0 {
		if err := s.cache.InvalidateActiveAds(ctx); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("failed to invalidate active ad cache")
		}
		pkglogger.GetLogger().Info().Int64("expired", expired).Int64("rejected", rejected).Msg("ad lifecycle pass")
	}
	return expired, rejected, nil
}
