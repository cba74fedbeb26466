package billing

import (
	"strings"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"golang.org/x/text/width"
)

// Alias maps one raw vendor-name spelling observed in a specific upload
// source to a canonical vendor. Within a source type an alias belongs to at
// most one vendor; the (alias, source_type) pair is the primary key so the
// partition invariant is enforced by storage as well as by the registry.
type Alias struct {
	Alias      string     `gorm:"type:varchar(200);primaryKey"`
	SourceType SourceType `gorm:"column:source_type;type:varchar(30);primaryKey"`
	VendorID   string     `gorm:"column:vendor_id;type:varchar(100);not null;index"`
	CreatedAt  time.Time
}

// TableName returns the table name for GORM
func (Alias) TableName() string {
	return "aliases"
}

// NormalizeAlias canonicalizes a raw name string before matching or storing.
// Uploaded sheets mix full-width and half-width characters and pad names
// with stray whitespace, so both are folded here.
func NormalizeAlias(raw string) string {
	folded := width.Fold.String(raw)
	return strings.Join(strings.Fields(folded), " ")
}

func normalizeUpper(raw string) string {
	return strings.ToUpper(NormalizeAlias(raw))
}

// NewAlias creates a validated alias assignment.
func NewAlias(vendorID string, sourceType SourceType, raw string) (*Alias, error) {
	alias := NormalizeAlias(raw)
	if alias == "" {
		return nil, shared.NewDomainError("INVALID_ALIAS", "Alias cannot be empty")
	}
	if len(alias) > 200 {
		return nil, shared.NewDomainError("INVALID_ALIAS", "Alias cannot exceed 200 characters")
	}
	if strings.TrimSpace(vendorID) == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR_ID", "Vendor ID cannot be empty")
	}
	if !sourceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE_TYPE", "Unknown source type: "+string(sourceType))
	}
	return &Alias{
		Alias:      alias,
		SourceType: sourceType,
		VendorID:   vendorID,
		CreatedAt:  time.Now(),
	}, nil
}

// MatchNames returns the full inclusion filter for a vendor in one source:
// the canonical vendor ID, the display name, and every registered alias,
// deduplicated. Rows in the uploaded tables are matched against this set, so
// a row carrying the display name needs no alias to be billed.
func MatchNames(vendorID, vendorName string, aliases []Alias) []string {
	names := make([]string, 0, len(aliases)+2)
	seen := make(map[string]struct{}, len(aliases)+2)

	add := func(name string) {
		name = NormalizeAlias(name)
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	add(vendorID)
	add(vendorName)
	for _, a := range aliases {
		add(a.Alias)
	}
	return names
}
