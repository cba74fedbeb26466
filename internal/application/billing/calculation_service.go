package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CalculateOptions toggles individual computation stages. Flag-gated service
// fees, return fees, packaging and vendor charges are not independently
// toggleable; they follow the vendor's configuration.
type CalculateOptions struct {
	IncludeBasicShipping bool
	IncludeCourierFee    bool
	IncludeInboundFee    bool
	IncludeRemoteFee     bool
	IncludeWorklog       bool
}

// DefaultCalculateOptions returns the options with every stage enabled.
func DefaultCalculateOptions() CalculateOptions {
	return CalculateOptions{
		IncludeBasicShipping: true,
		IncludeCourierFee:    true,
		IncludeInboundFee:    true,
		IncludeRemoteFee:     true,
		IncludeWorklog:       true,
	}
}

// CalculateRequest identifies one vendor and period to price.
type CalculateRequest struct {
	VendorID string
	From     time.Time
	To       time.Time
	Options  CalculateOptions
}

// CalculationResult is the itemized outcome of one calculation. Warnings
// collect every recoverable condition encountered by the stages; a result
// with warnings is still a usable, correctly totaled invoice.
type CalculationResult struct {
	VendorID    string
	From        time.Time
	To          time.Time
	Items       []billing.InvoiceItem
	TotalAmount decimal.Decimal
	ZoneCounts  map[string]int64
	Warnings    []string
	Duration    time.Duration
}

// CalculationService is the invoice computation engine. It orchestrates the
// identity registry, rate tables and source data into an itemized result.
// Stages run in a fixed order and never abort each other; the only fatal
// precondition is an unknown vendor.
type CalculationService struct {
	vendorRepo billing.VendorRepository
	aliasRepo  billing.AliasRepository
	rateRepo   billing.RateRepository
	sourceRepo billing.SourceRowRepository
	logger     *zap.Logger
}

// NewCalculationService creates a new CalculationService
func NewCalculationService(
	vendorRepo billing.VendorRepository,
	aliasRepo billing.AliasRepository,
	rateRepo billing.RateRepository,
	sourceRepo billing.SourceRowRepository,
	logger *zap.Logger,
) *CalculationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalculationService{
		vendorRepo: vendorRepo,
		aliasRepo:  aliasRepo,
		rateRepo:   rateRepo,
		sourceRepo: sourceRepo,
		logger:     logger,
	}
}

// calcState carries the accumulating item list, warnings and intermediate
// lookups through the stages. Stage order is fixed, so item and warning
// order is deterministic for a fixed input.
type calcState struct {
	vendor     *billing.Vendor
	from, to   time.Time
	items      []billing.InvoiceItem
	warnings   []string
	zoneCounts map[string]int64
	zoneOrder  []string
	zoneTable  *billing.ZoneTable
}

func (st *calcState) addItem(item billing.InvoiceItem) {
	st.items = append(st.items, item)
}

func (st *calcState) warnf(format string, args ...any) {
	st.warnings = append(st.warnings, fmt.Sprintf(format, args...))
}

// qtyOf returns the quantity of the first item carrying the label, or zero.
// Flag fee stages key their quantity off earlier stage outputs this way.
func (st *calcState) qtyOf(label string) int64 {
	for _, it := range st.items {
		if it.Label == label {
			return it.Quantity
		}
	}
	return 0
}

// CalculateInvoice runs every enabled stage for one vendor and period.
// Fails only when the vendor does not exist; every other condition degrades
// to a warning with zero contribution.
func (s *CalculationService) CalculateInvoice(ctx context.Context, req CalculateRequest) (*CalculationResult, error) {
	start := time.Now()

	vendor, err := s.vendorRepo.FindByID(ctx, req.VendorID)
	if err != nil {
		return nil, err
	}

	st := &calcState{
		vendor:     vendor,
		from:       req.From,
		to:         req.To,
		zoneCounts: make(map[string]int64),
	}

	if req.Options.IncludeCourierFee {
		s.courierFeeStage(ctx, st)
	}
	if req.Options.IncludeInboundFee {
		s.inboundFeeStage(ctx, st)
	}
	if req.Options.IncludeRemoteFee {
		s.remoteFeeStage(ctx, st)
	}
	if req.Options.IncludeWorklog {
		s.worklogStage(ctx, st)
	}
	if req.Options.IncludeBasicShipping {
		s.basicShippingStage(ctx, st)
	}
	s.flagFeeStages(ctx, st)
	s.returnFeeStages(ctx, st)
	s.boxFeeStage(ctx, st)
	s.combinedPackStage(ctx, st)
	s.vendorChargeStage(ctx, st)
	s.storageFeeStage(ctx, st)

	total := decimal.Zero
	for _, it := range st.items {
		total = total.Add(it.Amount)
	}

	result := &CalculationResult{
		VendorID:    vendor.VendorID,
		From:        req.From,
		To:          req.To,
		Items:       st.items,
		TotalAmount: total,
		ZoneCounts:  st.zoneCounts,
		Warnings:    st.warnings,
		Duration:    time.Since(start),
	}

	s.logger.Info("invoice calculated",
		zap.String("vendor_id", vendor.VendorID),
		zap.Int("items", len(result.Items)),
		zap.Int("warnings", len(result.Warnings)),
		zap.String("total", result.TotalAmount.String()),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// matchNames builds the inclusion filter (vendor ID + display name + aliases)
// for a source.
func (s *CalculationService) matchNames(ctx context.Context, vendor *billing.Vendor, sourceType billing.SourceType) ([]string, error) {
	aliases, err := s.aliasRepo.FindByVendor(ctx, vendor.VendorID, sourceType)
	if err != nil {
		return nil, err
	}
	return billing.MatchNames(vendor.VendorID, vendor.Name, aliases), nil
}

// loadZoneTable builds (once) the zone table for the vendor's rate plan.
func (s *CalculationService) loadZoneTable(ctx context.Context, st *calcState) (*billing.ZoneTable, error) {
	if st.zoneTable != nil {
		return st.zoneTable, nil
	}
	rates, err := s.rateRepo.ShippingZoneRates(ctx, st.vendor.RatePlan)
	if err != nil {
		return nil, err
	}
	table, err := billing.NewZoneTable(st.vendor.RatePlan, rates)
	if err != nil {
		return nil, err
	}
	st.zoneTable = table
	return table, nil
}

// courierFeeStage classifies postal parcels into length zones and emits one
// item per occupied zone. It runs before every other stage because the zone
// counts it records feed the packaging stage.
func (s *CalculationService) courierFeeStage(ctx context.Context, st *calcState) {
	names, err := s.matchNames(ctx, st.vendor, billing.SourcePostalIn)
	if err != nil {
		st.warnf("택배요금: 별칭 조회 실패 (%v)", err)
		return
	}
	rows, err := s.sourceRepo.PostalIn(ctx, names, st.from, st.to)
	if err != nil {
		st.warnf("택배요금: 데이터 조회 실패 (%v)", err)
		return
	}
	rows = billing.DedupPostalIn(rows)
	if len(rows) == 0 {
		st.warnf("택배요금: 기간 내 데이터 없음")
		return
	}

	table, err := s.loadZoneTable(ctx, st)
	if err != nil {
		st.warnf("택배요금: 요금제 %s 구간표 사용 불가 (%v)", st.vendor.RatePlan, err)
		return
	}

	var unmatched int64
	for _, r := range rows {
		band, ok := table.Lookup(r.VolumeCm)
		if !ok {
			unmatched++
			continue
		}
		st.zoneCounts[band.Zone]++
	}

	for _, band := range table.Bands() {
		cnt := st.zoneCounts[band.Zone]
		if cnt == 0 {
			continue
		}
		st.zoneOrder = append(st.zoneOrder, band.Zone)
		st.addItem(billing.NewInvoiceItem(fmt.Sprintf("택배요금 (%s)", band.Zone), cnt, band.Price))
	}
	if unmatched > 0 {
		st.warnf("택배요금: 구간 미일치 %d건", unmatched)
	}
}

// inboundFeeStage prices the summed received quantity against the 입고검수
// unit price.
func (s *CalculationService) inboundFeeStage(ctx context.Context, st *calcState) {
	names, err := s.matchNames(ctx, st.vendor, billing.SourceInboundSlip)
	if err != nil {
		st.warnf("입고검수: 별칭 조회 실패 (%v)", err)
		return
	}
	rows, err := s.sourceRepo.InboundSlips(ctx, names, st.from, st.to)
	if err != nil {
		st.warnf("입고검수: 데이터 조회 실패 (%v)", err)
		return
	}

	var totalQty int64
	for _, r := range rows {
		totalQty += r.Quantity
	}
	if totalQty == 0 {
		st.warnf("입고검수: 기간 내 데이터 없음")
		return
	}

	unit, ok, err := s.rateRepo.OutboundExtraPrice(ctx, billing.ExtraItemInboundInspection)
	if err != nil {
		st.warnf("입고검수: 단가 조회 실패 (%v)", err)
		return
	}
	if !ok {
		st.warnf("입고검수: 단가 미등록")
		return
	}
	st.addItem(billing.NewInvoiceItem("입고검수", totalQty, unit))
}

// remoteFeeStage counts remote-area deliveries among the postal parcels.
func (s *CalculationService) remoteFeeStage(ctx context.Context, st *calcState) {
	names, err := s.matchNames(ctx, st.vendor, billing.SourcePostalIn)
	if err != nil {
		st.warnf("도서산간: 별칭 조회 실패 (%v)", err)
		return
	}
	rows, err := s.sourceRepo.PostalIn(ctx, names, st.from, st.to)
	if err != nil {
		st.warnf("도서산간: 데이터 조회 실패 (%v)", err)
		return
	}

	var qty int64
	for _, r := range rows {
		if r.IsRemote {
			qty++
		}
	}
	if qty == 0 {
		return
	}

	unit, ok, err := s.rateRepo.OutboundExtraPrice(ctx, billing.ExtraItemRemoteArea)
	if err != nil {
		st.warnf("도서산간: 단가 조회 실패 (%v)", err)
		return
	}
	if !ok {
		st.warnf("도서산간: 단가 미등록")
		return
	}
	st.addItem(billing.NewInvoiceItem("도서산간", qty, unit))
}

// worklogKey groups manually recorded labor rows. Same category, unit price
// and memo collapse into one line.
type worklogKey struct {
	category string
	unit     string
	memo     string
}

// worklogStage passes recorded labor through, aggregated by category, unit
// price and memo. Amounts were fixed at recording time, so the summed amount
// is carried as-is rather than repriced.
func (s *CalculationService) worklogStage(ctx context.Context, st *calcState) {
	names, err := s.matchNames(ctx, st.vendor, billing.SourceWorkLog)
	if err != nil {
		st.warnf("작업일지: 별칭 조회 실패 (%v)", err)
		return
	}
	rows, err := s.sourceRepo.WorkLogs(ctx, names, st.from, st.to)
	if err != nil {
		st.warnf("작업일지: 데이터 조회 실패 (%v)", err)
		return
	}
	if len(rows) == 0 {
		st.warnf("작업일지: 기간 내 데이터 없음")
		return
	}

	type group struct {
		qty    int64
		amount decimal.Decimal
		unit   decimal.Decimal
	}
	groups := make(map[worklogKey]*group)
	var order []worklogKey

	for _, r := range rows {
		memo := strings.TrimSpace(r.Memo)
		key := worklogKey{category: r.Category, unit: r.UnitPrice.String(), memo: memo}
		g, ok := groups[key]
		if !ok {
			g = &group{unit: r.UnitPrice, amount: decimal.Zero}
			groups[key] = g
			order = append(order, key)
		}
		g.qty += r.Quantity
		g.amount = g.amount.Add(r.Amount)
	}

	for _, key := range order {
		g := groups[key]
		label := key.category
		if key.memo != "" {
			label = fmt.Sprintf("%s (%s)", key.category, key.memo)
		}
		st.addItem(billing.InvoiceItem{
			Label:     label,
			Quantity:  g.qty,
			UnitPrice: g.unit,
			Amount:    g.amount,
			Remark:    key.memo,
		})
	}
}

// basicShippingStage prices deduplicated outbound parcels against the
// vendor's SKU band unit price.
func (s *CalculationService) basicShippingStage(ctx context.Context, st *calcState) {
	names, err := s.matchNames(ctx, st.vendor, billing.SourceShippingStats)
	if err != nil {
		st.warnf("기본 출고비: 별칭 조회 실패 (%v)", err)
		return
	}
	rows, err := s.sourceRepo.ShippingStats(ctx, names, st.from, st.to)
	if err != nil {
		st.warnf("기본 출고비: 데이터 조회 실패 (%v)", err)
		return
	}
	rows = billing.DedupShippingStats(rows)
	if len(rows) == 0 {
		st.warnf("기본 출고비: 기간 내 데이터 없음")
		return
	}

	unit, err := s.rateRepo.OutboundBasicPrice(ctx, st.vendor.SKUGroup)
	if err != nil {
		st.warnf("기본 출고비: SKU구간 %s 단가 없음", st.vendor.SKUGroup)
		return
	}
	st.addItem(billing.NewInvoiceItem("기본 출고비", int64(len(rows)), unit))
}

// flagFeeStages emits the per-vendor optional service fees. Each fee borrows
// its quantity from an earlier stage's item, so a zero or missing base item
// silently disables it.
func (s *CalculationService) flagFeeStages(ctx context.Context, st *calcState) {
	flags := st.vendor.Flags

	if flags.Barcode {
		s.extraFlagFee(ctx, st, "바코드 부착", billing.ExtraItemBarcode, st.qtyOf("입고검수"))
	}
	if flags.VoidFill {
		s.extraFlagFee(ctx, st, "완충작업", billing.ExtraItemVoidFill, st.qtyOf("기본 출고비"))
	}
	if flags.PPBag {
		s.ppBagFee(ctx, st, st.qtyOf("입고검수"))
	}
	if flags.VideoOutbound {
		s.extraFlagFee(ctx, st, "출고영상촬영", billing.ExtraItemVideoOutbound, st.qtyOf("기본 출고비"))
	}
}

func (s *CalculationService) extraFlagFee(ctx context.Context, st *calcState, label, rateItem string, qty int64) {
	if qty == 0 {
		return
	}
	unit, ok, err := s.rateRepo.OutboundExtraPrice(ctx, rateItem)
	if err != nil {
		st.warnf("%s: 단가 조회 실패 (%v)", label, err)
		return
	}
	if !ok {
		st.warnf("%s: 단가 미등록", label)
		return
	}
	st.addItem(billing.NewInvoiceItem(label, qty, unit))
}

// ppBagFee prices PP bags per received unit from the material price list.
func (s *CalculationService) ppBagFee(ctx context.Context, st *calcState, qty int64) {
	if qty == 0 {
		return
	}
	materials, err := s.rateRepo.MaterialRates(ctx)
	if err != nil {
		st.warnf("PP 봉투: 단가 조회 실패 (%v)", err)
		return
	}
	for _, m := range materials {
		if m.Item == "PP 봉투 중형" {
			st.addItem(billing.NewInvoiceItem("PP 봉투", qty, m.UnitPrice))
			return
		}
	}
	st.warnf("PP 봉투: 자재 단가 미등록")
}

// returnFeeStages prices returned parcels: the pickup fee per return, the
// return courier fee by zone, and return video recording when flagged.
func (s *CalculationService) returnFeeStages(ctx context.Context, st *calcState) {
	names, err := s.matchNames(ctx, st.vendor, billing.SourcePostalReturn)
	if err != nil {
		st.warnf("반품: 별칭 조회 실패 (%v)", err)
		return
	}
	rows, err := s.sourceRepo.PostalReturns(ctx, names, st.from, st.to)
	if err != nil {
		st.warnf("반품: 데이터 조회 실패 (%v)", err)
		return
	}
	if len(rows) == 0 {
		return
	}

	cnt := int64(len(rows))

	unit, ok, err := s.rateRepo.OutboundExtraPrice(ctx, billing.ExtraItemReturnPickup)
	if err != nil {
		st.warnf("반품 회수비: 단가 조회 실패 (%v)", err)
	} else if !ok {
		st.warnf("반품 회수비: 단가 미등록")
	} else {
		st.addItem(billing.NewInvoiceItem("반품 회수비", cnt, unit))
	}

	s.returnCourierFee(ctx, st, rows)

	if st.vendor.Flags.VideoReturn {
		s.extraFlagFee(ctx, st, "반품영상촬영", billing.ExtraItemVideoReturn, cnt)
	}
}

func (s *CalculationService) returnCourierFee(ctx context.Context, st *calcState, rows []billing.PostalReturnRow) {
	table, err := s.loadZoneTable(ctx, st)
	if err != nil {
		st.warnf("반품 택배요금: 요금제 %s 구간표 사용 불가 (%v)", st.vendor.RatePlan, err)
		return
	}

	counts := make(map[string]int64)
	var unmatched int64
	for _, r := range rows {
		band, ok := table.Lookup(r.VolumeCm)
		if !ok {
			unmatched++
			continue
		}
		counts[band.Zone]++
	}

	for _, band := range table.Bands() {
		cnt := counts[band.Zone]
		if cnt == 0 {
			continue
		}
		st.addItem(billing.NewInvoiceItem(fmt.Sprintf("반품 택배요금 (%s)", band.Zone), cnt, band.Price))
	}
	if unmatched > 0 {
		st.warnf("반품 택배요금: 구간 미일치 %d건", unmatched)
	}
}

// boxFeeStage converts the courier zone counts into packaging material
// items. Mailer-bag vendors get bags for the small zones and boxes above;
// everyone else gets the zone-matched box.
func (s *CalculationService) boxFeeStage(ctx context.Context, st *calcState) {
	if len(st.zoneOrder) == 0 {
		return
	}
	materials, err := s.rateRepo.MaterialRates(ctx)
	if err != nil {
		st.warnf("포장재: 단가 조회 실패 (%v)", err)
		return
	}

	useMailer := st.vendor.UsesMailer()
	for _, zone := range st.zoneOrder {
		qty := st.zoneCounts[zone]
		if qty == 0 {
			continue
		}
		mat, found := pickMaterial(materials, zone, useMailer)
		if !found {
			st.warnf("포장재: 구간 %s 자재 미등록", zone)
			continue
		}
		st.addItem(billing.NewInvoiceItem(mat.Item, qty, mat.UnitPrice))
	}
}

// pickMaterial selects the packaging material for a zone. Mailer selection
// covers the three smallest zones only; larger parcels always ship boxed.
func pickMaterial(materials []billing.MaterialRate, zone string, useMailer bool) (billing.MaterialRate, bool) {
	find := func(sizeCode string, substrings ...string) (billing.MaterialRate, bool) {
		for _, m := range materials {
			if m.SizeCode != sizeCode {
				continue
			}
			match := true
			for _, sub := range substrings {
				if !strings.Contains(m.Item, sub) {
					match = false
					break
				}
			}
			if match {
				return m, true
			}
		}
		return billing.MaterialRate{}, false
	}

	if useMailer {
		switch zone {
		case "극소":
			if m, ok := find("극소", "택배 봉투", "소형"); ok {
				return m, true
			}
		case "소", "중":
			if m, ok := find("중", "택배 봉투", "대형"); ok {
				return m, true
			}
		}
	}
	return find(zone, "박스")
}

// combinedPackStage bills the inner-item count above two per outbound
// parcel.
func (s *CalculationService) combinedPackStage(ctx context.Context, st *calcState) {
	names, err := s.matchNames(ctx, st.vendor, billing.SourceShippingStats)
	if err != nil {
		st.warnf("합포장: 별칭 조회 실패 (%v)", err)
		return
	}
	rows, err := s.sourceRepo.ShippingStats(ctx, names, st.from, st.to)
	if err != nil {
		st.warnf("합포장: 데이터 조회 실패 (%v)", err)
		return
	}
	rows = billing.DedupShippingStats(rows)

	var excess int64
	for _, r := range rows {
		if r.InnerQty > 2 {
			excess += r.InnerQty - 2
		}
	}
	if excess == 0 {
		return
	}

	unit, ok, err := s.rateRepo.OutboundExtraPrice(ctx, billing.ExtraItemCombinedPack)
	if err != nil {
		st.warnf("합포장: 단가 조회 실패 (%v)", err)
		return
	}
	if !ok {
		st.warnf("합포장: 단가 미등록")
		return
	}
	st.addItem(billing.NewInvoiceItem("합포장 (2개 초과/개)", excess, unit))
}

// vendorChargeStage appends active per-vendor recurring and ad-hoc charges.
// Not gated by any option flag.
func (s *CalculationService) vendorChargeStage(ctx context.Context, st *calcState) {
	charges, err := s.rateRepo.VendorCharges(ctx, st.vendor.VendorID, true)
	if err != nil {
		st.warnf("공급처 청구항목: 조회 실패 (%v)", err)
		return
	}
	for _, c := range charges {
		st.addItem(billing.InvoiceItem{
			Label:     c.Item,
			Quantity:  c.Qty,
			UnitPrice: c.UnitPrice,
			Amount:    c.Amount,
			Remark:    c.Remark,
		})
	}
}

// storageFeeStage appends storage fees whose billing period falls inside the
// calculation range. Not gated by any option flag.
func (s *CalculationService) storageFeeStage(ctx context.Context, st *calcState) {
	fees, err := s.rateRepo.StorageFees(ctx, st.vendor.VendorID, st.from, st.to)
	if err != nil {
		st.warnf("보관비: 조회 실패 (%v)", err)
		return
	}
	for _, f := range fees {
		st.addItem(billing.InvoiceItem{
			Label:     f.Item,
			Quantity:  f.Qty,
			UnitPrice: f.UnitPrice,
			Amount:    f.Amount,
			Remark:    f.Remark,
		})
	}
}
