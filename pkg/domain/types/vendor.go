package types

import "github.com/m-mizutani/goerr/v2"

// Vendor is a live data source a QBR report can be refreshed from
type Vendor string

const (
	VendorCork   Vendor = "cork"
	VendorITGlue Vendor = "itglue"
)

// DisplayName returns the vendor name used in messages
func (v Vendor) DisplayName() string {
	switch v {
	case VendorCork:
		return "Cork"
	case VendorITGlue:
		return "IT Glue"
	default:
		return string(v)
	}
}

// TemplateReportID returns the id of the QBR report the vendor renders into
func (v Vendor) TemplateReportID() ReportID {
	return ReportID("qbr-report-" + string(v))
}

func (v Vendor) String() string { return string(v) }

// ParseVendor validates a vendor name
func ParseVendor(s string) (Vendor, error) {
	switch Vendor(s) {
	case VendorCork, VendorITGlue:
		return Vendor(s), nil
	default:
		return "", goerr.New("unknown vendor", goerr.V("vendor", s))
	}
}
