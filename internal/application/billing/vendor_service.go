package billing

import (
	"context"
	"errors"
	"sort"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// VendorService handles the vendor registry and its per-source alias
// partition.
type VendorService struct {
	vendorRepo billing.VendorRepository
	aliasRepo  billing.AliasRepository
	sourceRepo billing.SourceRowRepository
	logger     *zap.Logger
}

// NewVendorService creates a new VendorService
func NewVendorService(
	vendorRepo billing.VendorRepository,
	aliasRepo billing.AliasRepository,
	sourceRepo billing.SourceRowRepository,
	logger *zap.Logger,
) *VendorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VendorService{
		vendorRepo: vendorRepo,
		aliasRepo:  aliasRepo,
		sourceRepo: sourceRepo,
		logger:     logger,
	}
}

// CreateVendorRequest carries the attributes of a new vendor.
type CreateVendorRequest struct {
	VendorID string
	Name     string
	RatePlan string
	SKUGroup billing.SKUGroup
	Flags    billing.ServiceFlags
}

// CreateVendor registers a new canonical vendor.
func (s *VendorService) CreateVendor(ctx context.Context, req CreateVendorRequest) (*billing.Vendor, error) {
	existing, err := s.vendorRepo.FindByID(ctx, req.VendorID)
	if err != nil && !errors.Is(err, shared.ErrVendorNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	vendor, err := billing.NewVendor(req.VendorID, req.Name, billing.NormalizeRatePlan(req.RatePlan), req.SKUGroup)
	if err != nil {
		return nil, err
	}
	vendor.SetFlags(req.Flags)

	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		return nil, err
	}

	s.logger.Info("vendor created", zap.String("vendor_id", vendor.VendorID))
	return vendor, nil
}

// UpdateVendorRequest carries the mutable attributes of a vendor.
type UpdateVendorRequest struct {
	Name     string
	RatePlan string
	SKUGroup billing.SKUGroup
	Flags    billing.ServiceFlags
	Active   bool
}

// UpdateVendor updates billing attributes, flags and the active state.
func (s *VendorService) UpdateVendor(ctx context.Context, vendorID string, req UpdateVendorRequest) (*billing.Vendor, error) {
	vendor, err := s.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	if err := vendor.Update(req.Name, billing.NormalizeRatePlan(req.RatePlan), req.SKUGroup); err != nil {
		return nil, err
	}
	vendor.SetFlags(req.Flags)
	if req.Active {
		vendor.Activate()
	} else {
		vendor.Deactivate()
	}

	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

// GetVendor loads one vendor.
func (s *VendorService) GetVendor(ctx context.Context, vendorID string) (*billing.Vendor, error) {
	return s.vendorRepo.FindByID(ctx, vendorID)
}

// ListVendors returns all vendors, optionally only the active ones.
func (s *VendorService) ListVendors(ctx context.Context, activeOnly bool) ([]billing.Vendor, error) {
	return s.vendorRepo.FindAll(ctx, activeOnly)
}

// DeleteVendor removes a vendor together with its aliases.
func (s *VendorService) DeleteVendor(ctx context.Context, vendorID string) error {
	if _, err := s.GetVendor(ctx, vendorID); err != nil {
		return err
	}
	if err := s.aliasRepo.DeleteByVendor(ctx, vendorID); err != nil {
		return err
	}
	if err := s.vendorRepo.Delete(ctx, vendorID); err != nil {
		return err
	}
	s.logger.Info("vendor deleted", zap.String("vendor_id", vendorID))
	return nil
}

// ListAliases returns the vendor's aliases, optionally for one source type.
func (s *VendorService) ListAliases(ctx context.Context, vendorID string, sourceType billing.SourceType) ([]billing.Alias, error) {
	if _, err := s.GetVendor(ctx, vendorID); err != nil {
		return nil, err
	}
	return s.aliasRepo.FindByVendor(ctx, vendorID, sourceType)
}

// AssignAlias registers a raw name spelling for the vendor under one source
// type. An alias already owned by another vendor is rejected with
// ErrAliasConflict and leaves both vendors' alias sets unchanged.
func (s *VendorService) AssignAlias(ctx context.Context, vendorID string, sourceType billing.SourceType, raw string) (*billing.Alias, error) {
	if _, err := s.GetVendor(ctx, vendorID); err != nil {
		return nil, err
	}

	alias, err := billing.NewAlias(vendorID, sourceType, raw)
	if err != nil {
		return nil, err
	}

	owners, err := s.aliasRepo.FindOwners(ctx, sourceType, alias.Alias)
	if err != nil {
		return nil, err
	}
	for _, owner := range owners {
		if owner.VendorID == vendorID {
			// Already registered for this vendor; assignment is idempotent.
			return &owner, nil
		}
		return nil, shared.ErrAliasConflict
	}

	// The unique index backs this up under concurrent assignment.
	if err := s.aliasRepo.Save(ctx, alias); err != nil {
		return nil, err
	}

	s.logger.Info("alias assigned",
		zap.String("vendor_id", vendorID),
		zap.String("source_type", string(sourceType)),
		zap.String("alias", alias.Alias))

	return alias, nil
}

// RemoveAlias drops one alias assignment.
func (s *VendorService) RemoveAlias(ctx context.Context, vendorID string, sourceType billing.SourceType, raw string) error {
	if _, err := s.GetVendor(ctx, vendorID); err != nil {
		return err
	}
	return s.aliasRepo.Delete(ctx, vendorID, sourceType, billing.NormalizeAlias(raw))
}

// AliasOwners returns every vendor currently owning the alias under the
// source type. More than one entry means the stored partition invariant is
// violated; the caller reports all owners instead of guessing.
func (s *VendorService) AliasOwners(ctx context.Context, sourceType billing.SourceType, raw string) ([]billing.Alias, error) {
	return s.aliasRepo.FindOwners(ctx, sourceType, billing.NormalizeAlias(raw))
}

// UnmatchedAliases returns the distinct raw names present in one source's
// uploaded rows that no vendor owns, sorted for stable display. These are
// the data-quality gaps an operator resolves by assigning aliases.
func (s *VendorService) UnmatchedAliases(ctx context.Context, sourceType billing.SourceType) ([]string, error) {
	names, err := s.sourceRepo.DistinctNames(ctx, sourceType)
	if err != nil {
		return nil, err
	}
	mapped, err := s.aliasRepo.MappedAliases(ctx, sourceType, "")
	if err != nil {
		return nil, err
	}
	vendors, err := s.vendorRepo.FindAll(ctx, false)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(mapped)+len(vendors))
	for _, m := range mapped {
		known[billing.NormalizeAlias(m)] = struct{}{}
	}
	// A raw name equal to a vendor ID or display name needs no alias.
	for _, v := range vendors {
		known[billing.NormalizeAlias(v.VendorID)] = struct{}{}
		known[billing.NormalizeAlias(v.Name)] = struct{}{}
	}

	var unmatched []string
	seen := make(map[string]struct{})
	for _, raw := range names {
		name := billing.NormalizeAlias(raw)
		if name == "" {
			continue
		}
		if _, ok := known[name]; ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		unmatched = append(unmatched, name)
	}
	sort.Strings(unmatched)
	return unmatched, nil
}

// AvailableAliases returns the distinct raw names in one source that the
// vendor could still claim: everything not already owned by a different
// vendor.
func (s *VendorService) AvailableAliases(ctx context.Context, sourceType billing.SourceType, vendorID string) ([]string, error) {
	if _, err := s.GetVendor(ctx, vendorID); err != nil {
		return nil, err
	}

	names, err := s.sourceRepo.DistinctNames(ctx, sourceType)
	if err != nil {
		return nil, err
	}
	taken, err := s.aliasRepo.MappedAliases(ctx, sourceType, vendorID)
	if err != nil {
		return nil, err
	}

	takenSet := make(map[string]struct{}, len(taken))
	for _, a := range taken {
		takenSet[billing.NormalizeAlias(a)] = struct{}{}
	}

	var available []string
	seen := make(map[string]struct{})
	for _, raw := range names {
		name := billing.NormalizeAlias(raw)
		if name == "" {
			continue
		}
		if _, ok := takenSet[name]; ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		available = append(available, name)
	}
	sort.Strings(available)
	return available, nil
}
