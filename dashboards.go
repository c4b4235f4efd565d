package RSClientGo

import (
	"time"
)

// Prebuilt aggregate bodies behind the platform dashboard widgets.
// The *Request functions only build the body so that the values interpolated into them can be checked,
// the Get* functions send them.

func openFindings(extra ...Filter) *FilterRequest {
	filters := []Filter{{Field: "generic_state", Operator: FilterOperatorExact, Value: "Open"}}
	return &FilterRequest{Filters: append(filters, extra...)}
}

func bySeverity() []AggregateRequest {
	return []AggregateRequest{{Field: "severity_group", EsAggregator: AggregatorTerms, Size: 5}}
}

// open findings split into overdue, within SLA and no due date, each by severity
// RANGE bounds are inclusive, so a finding due today is still within SLA
func SLAOverviewRequest(now time.Time) AggregateRequest {
	today := FormatDate(now)
	yesterday := FormatDate(now.AddDate(0, 0, -1))
	return AggregateRequest{
		EsAggregator:  AggregatorFilters,
		FilterRequest: openFindings(),
		NamedFilters: []NamedFilter{
			{Name: "overdue", FilterRequest: FilterRequest{Filters: []Filter{
				{Field: "sla_date", Operator: FilterOperatorRange, Value: "," + yesterday},
			}}},
			{Name: "within SLA", FilterRequest: FilterRequest{Filters: []Filter{
				{Field: "sla_date", Operator: FilterOperatorRange, Value: today + ","},
			}}},
			{Name: "no due date", FilterRequest: FilterRequest{Filters: []Filter{
				{Field: "sla_date", Exclusive: true, Operator: FilterOperatorWildcard, Value: "*"},
			}}},
		},
		SubAggregators: bySeverity(),
	}
}

func RansomwareExposureRequest() AggregateRequest {
	return AggregateRequest{
		Field:        "severity_group",
		EsAggregator: AggregatorTerms,
		Size:         5,
		FilterRequest: openFindings(
			Filter{Field: "threat_category", Operator: FilterOperatorExact, Value: "Ransomware"},
		),
	}
}

// each stage narrows the previous one
func WeaponizationFunnelRequest() AggregateRequest {
	exploitable := Filter{Field: "exploit_available", Operator: FilterOperatorExact, Value: "true"}
	weaponized := Filter{Field: "weaponized", Operator: FilterOperatorExact, Value: "true"}
	trending := Filter{Field: "trending", Operator: FilterOperatorExact, Value: "true"}

	return AggregateRequest{
		EsAggregator:  AggregatorFilters,
		FilterRequest: openFindings(),
		NamedFilters: []NamedFilter{
			{Name: "open", FilterRequest: FilterRequest{Filters: []Filter{}}},
			{Name: "exploitable", FilterRequest: FilterRequest{Filters: []Filter{exploitable}}},
			{Name: "weaponized", FilterRequest: FilterRequest{Filters: []Filter{exploitable, weaponized}}},
			{Name: "trending", FilterRequest: FilterRequest{Filters: []Filter{exploitable, weaponized, trending}}},
		},
	}
}

// average client RS3 per interval (day, week, month) between from and to
func RS3TrendRequest(from, to time.Time, interval string) AggregateRequest {
	if interval == "" {
		interval = "week"
	}
	return AggregateRequest{
		Subject:      SubjectRS3History,
		Field:        "date",
		EsAggregator: AggregatorDateHistogram,
		Interval:     interval,
		FilterRequest: &FilterRequest{Filters: []Filter{
			{Field: "date", Operator: FilterOperatorRange, Value: DateRange(from, to)},
		}},
		SubAggregators: []AggregateRequest{{Field: "rs3", EsAggregator: AggregatorAverage}},
	}
}

func SeverityDistributionRequest() AggregateRequest {
	return AggregateRequest{
		Field:         "severity_group",
		EsAggregator:  AggregatorTerms,
		Size:          5,
		FilterRequest: openFindings(),
	}
}

func FindingsByGroupRequest(size uint64) AggregateRequest {
	return AggregateRequest{
		Field:          "group_names",
		EsAggregator:   AggregatorTerms,
		Size:           size,
		FilterRequest:  openFindings(),
		SubAggregators: bySeverity(),
	}
}

// open findings bucketed by age since discovery
func FindingsAgingRequest(now time.Time) AggregateRequest {
	day := func(d int) string { return FormatDate(now.AddDate(0, 0, -d)) }
	return AggregateRequest{
		Field:         "discovered_on",
		EsAggregator:  AggregatorDateRange,
		FilterRequest: openFindings(),
		Ranges: []AggregateRange{
			{Key: "0-30 days", From: day(30)},
			{Key: "31-60 days", From: day(60), To: day(30)},
			{Key: "61-90 days", From: day(90), To: day(60)},
			{Key: "90+ days", To: day(90)},
		},
	}
}

// findings closed per interval between from and to
func RemediationVelocityRequest(from, to time.Time, interval string) AggregateRequest {
	if interval == "" {
		interval = "week"
	}
	return AggregateRequest{
		Field:        "resolved_on",
		EsAggregator: AggregatorDateHistogram,
		Interval:     interval,
		FilterRequest: &FilterRequest{Filters: []Filter{
			{Field: "generic_state", Operator: FilterOperatorExact, Value: "Closed"},
			{Field: "resolved_on", Operator: FilterOperatorRange, Value: DateRange(from, to)},
		}},
	}
}

func TopVulnerableAssetsRequest(subject Subject, size uint64) AggregateRequest {
	field := "host_name"
	if subject == SubjectApplicationFinding {
		field = "application_name"
	}
	return AggregateRequest{
		Field:          field,
		EsAggregator:   AggregatorTerms,
		Size:           size,
		FilterRequest:  openFindings(),
		SubAggregators: bySeverity(),
	}
}

func CISAKEVExposureRequest() AggregateRequest {
	return AggregateRequest{
		Field:        "severity_group",
		EsAggregator: AggregatorTerms,
		Size:         5,
		FilterRequest: openFindings(
			Filter{Field: "cisa_kev", Operator: FilterOperatorExact, Value: "true"},
		),
	}
}

func (c RSClient) GetSLAOverview(subject Subject) (AggregateResponse, error) {
	return c.Aggregate(subject, SLAOverviewRequest(time.Now()))
}

func (c RSClient) GetRansomwareExposure(subject Subject) (AggregateResponse, error) {
	return c.Aggregate(subject, RansomwareExposureRequest())
}

func (c RSClient) GetWeaponizationFunnel(subject Subject) (AggregateResponse, error) {
	return c.Aggregate(subject, WeaponizationFunnelRequest())
}

func (c RSClient) GetRS3Trend(from, to time.Time, interval string) (AggregateResponse, error) {
	return c.Aggregate(SubjectRS3History, RS3TrendRequest(from, to, interval))
}

func (c RSClient) GetSeverityDistribution(subject Subject) (AggregateResponse, error) {
	return c.Aggregate(subject, SeverityDistributionRequest())
}

func (c RSClient) GetFindingsByGroup(subject Subject, size uint64) (AggregateResponse, error) {
	return c.Aggregate(subject, FindingsByGroupRequest(size))
}

func (c RSClient) GetFindingsAging(subject Subject) (AggregateResponse, error) {
	return c.Aggregate(subject, FindingsAgingRequest(time.Now()))
}

func (c RSClient) GetRemediationVelocity(subject Subject, from, to time.Time) (AggregateResponse, error) {
	return c.Aggregate(subject, RemediationVelocityRequest(from, to, "week"))
}

func (c RSClient) GetTopVulnerableAssets(subject Subject, size uint64) (AggregateResponse, error) {
	return c.Aggregate(subject, TopVulnerableAssetsRequest(subject, size))
}

func (c RSClient) GetCISAKEVExposure(subject Subject) (AggregateResponse, error) {
	return c.Aggregate(subject, CISAKEVExposureRequest())
}
