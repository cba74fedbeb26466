package billing

// SourceType identifies one of the uploaded spreadsheet sources that feed
// invoice calculation. The values match the file_type discriminator used by
// the upload pipeline, so they are part of the storage contract.
type SourceType string

const (
	SourceInboundSlip   SourceType = "inbound_slip"   // receiving slips (공급처)
	SourceShippingStats SourceType = "shipping_stats" // outbound shipping statistics (공급처)
	SourcePostalIn      SourceType = "kpost_in"       // postal courier outbound records (발송인명)
	SourcePostalReturn  SourceType = "kpost_ret"      // postal courier return records (수취인명)
	SourceWorkLog       SourceType = "work_log"       // manual work log entries (업체명)
)

// AllSourceTypes lists every source type in stable order.
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceInboundSlip,
		SourceShippingStats,
		SourcePostalIn,
		SourcePostalReturn,
		SourceWorkLog,
	}
}

// IsValid reports whether the source type is one of the five known sources.
func (s SourceType) IsValid() bool {
	switch s {
	case SourceInboundSlip, SourceShippingStats, SourcePostalIn, SourcePostalReturn, SourceWorkLog:
		return true
	}
	return false
}
