// Package dashboard evaluates the platform dashboard widgets. Each widget is an aggregate
// request and a jq expression that turns the aggregate response into labelled values.
package dashboard

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/itchyny/gojq"
	"github.com/pkg/errors"
	"github.com/risksense-community/RSClientGo"
	"github.com/samber/lo"
)

const (
	// one value per bucket
	bucketCounts = `.buckets[] | {label: .key, value: .count}`
	// one value per bucket and sub-bucket, eg: overdue/Critical
	nestedCounts = `.buckets[] as $b | ($b.subAggregations // [])[] | {label: "\($b.key)/\(.key)", value: .count}`
	// the first sub-aggregation carries the metric (eg: average RS3) of each bucket
	bucketMetric = `.buckets[] | {label: .key, value: ((.subAggregations // [])[0].value // 0)}`
)

const trendDays = 90

type Widget struct {
	Name  string
	Title string
	// fixed subject, eg: rs3History; empty uses the configured one
	Subject RSClientGo.Subject
	Build   func(now time.Time, subject RSClientGo.Subject) RSClientGo.AggregateRequest
	Query   string
}

type Point struct {
	Label string
	Value float64
}

func DefaultWidgets() []Widget {
	return []Widget{
		{
			Name:  "sla_overview",
			Title: "SLA overview",
			Build: func(now time.Time, _ RSClientGo.Subject) RSClientGo.AggregateRequest {
				return RSClientGo.SLAOverviewRequest(now)
			},
			Query: nestedCounts,
		},
		{
			Name:  "ransomware_exposure",
			Title: "Ransomware exposure",
			Build: func(time.Time, RSClientGo.Subject) RSClientGo.AggregateRequest {
				return RSClientGo.RansomwareExposureRequest()
			},
			Query: bucketCounts,
		},
		{
			Name:  "weaponization_funnel",
			Title: "Weaponization funnel",
			Build: func(time.Time, RSClientGo.Subject) RSClientGo.AggregateRequest {
				return RSClientGo.WeaponizationFunnelRequest()
			},
			Query: bucketCounts,
		},
		{
			Name:    "rs3_trend",
			Title:   "RS3 trend",
			Subject: RSClientGo.SubjectRS3History,
			Build: func(now time.Time, _ RSClientGo.Subject) RSClientGo.AggregateRequest {
				return RSClientGo.RS3TrendRequest(now.AddDate(0, 0, -trendDays), now, "week")
			},
			Query: bucketMetric,
		},
		{
			Name:  "severity_distribution",
			Title: "Severity distribution",
			Build: func(time.Time, RSClientGo.Subject) RSClientGo.AggregateRequest {
				return RSClientGo.SeverityDistributionRequest()
			},
			Query: bucketCounts,
		},
		{
			Name:  "findings_by_group",
			Title: "Open findings by group",
			Build: func(time.Time, RSClientGo.Subject) RSClientGo.AggregateRequest {
				return RSClientGo.FindingsByGroupRequest(20)
			},
			Query: bucketCounts,
		},
		{
			Name:  "findings_aging",
			Title: "Findings aging",
			Build: func(now time.Time, _ RSClientGo.Subject) RSClientGo.AggregateRequest {
				return RSClientGo.FindingsAgingRequest(now)
			},
			Query: bucketCounts,
		},
		{
			Name:  "remediation_velocity",
			Title: "Remediation velocity",
			Build: func(now time.Time, _ RSClientGo.Subject) RSClientGo.AggregateRequest {
				return RSClientGo.RemediationVelocityRequest(now.AddDate(0, 0, -trendDays), now, "week")
			},
			Query: bucketCounts,
		},
		{
			Name:  "top_vulnerable_assets",
			Title: "Top vulnerable assets",
			Build: func(_ time.Time, subject RSClientGo.Subject) RSClientGo.AggregateRequest {
				return RSClientGo.TopVulnerableAssetsRequest(subject, 10)
			},
			Query: bucketCounts,
		},
		{
			Name:  "cisa_kev_exposure",
			Title: "CISA KEV exposure",
			Build: func(time.Time, RSClientGo.Subject) RSClientGo.AggregateRequest {
				return RSClientGo.CISAKEVExposureRequest()
			},
			Query: bucketCounts,
		},
	}
}

// Select keeps the named widgets, in the order given; no names keeps them all
func Select(widgets []Widget, names []string) ([]Widget, error) {
	if len(names) == 0 {
		return widgets, nil
	}

	known := lo.Map(widgets, func(w Widget, _ int) string { return w.Name })
	if unknown := lo.Filter(names, func(n string, _ int) bool { return !lo.Contains(known, n) }); len(unknown) > 0 {
		return nil, errors.Errorf("unknown widgets %v, expected some of %v", unknown, known)
	}

	selected := make([]Widget, 0, len(names))
	for _, n := range lo.Uniq(names) {
		w, _ := lo.Find(widgets, func(w Widget) bool { return w.Name == n })
		selected = append(selected, w)
	}
	return selected, nil
}

// Evaluate runs the jq query over a raw aggregate response. The query must
// produce objects with a label and a numeric value.
func Evaluate(query string, data []byte) ([]Point, error) {
	parsed, err := gojq.Parse(query)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid widget query %q", query)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "aggregate response is not JSON")
	}

	var points []Point
	iter := parsed.Run(doc)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, errors.Wrapf(err, "widget query %q failed", query)
		}

		obj, isObj := v.(map[string]interface{})
		if !isObj {
			return nil, errors.Errorf("widget query %q produced %v, expected {label, value}", query, v)
		}
		value, err := toFloat(obj["value"])
		if err != nil {
			return nil, err
		}
		points = append(points, Point{
			Label: fmt.Sprint(obj["label"]),
			Value: value,
		})
	}
	return points, nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	}
	return 0, errors.Errorf("widget value %v is not a number", v)
}
