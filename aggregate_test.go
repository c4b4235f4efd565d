package RSClientGo

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dashboardNow = time.Date(2024, 8, 14, 9, 30, 0, 0, time.UTC)

func TestAggregate(t *testing.T) {
	mux := newMux(t)
	mux.HandleFunc("POST /api/v1/client/123/search/hostFinding/aggregate", func(w http.ResponseWriter, r *http.Request) {
		body := readJSON(t, r)
		assert.Equal(t, "hostFinding", body["subject"])
		assert.Equal(t, "severity_group", body["field"])
		assert.Equal(t, "TERMS", body["esAggregator"])

		writeJSON(t, w, AggregateResponse{
			Total: 12,
			Buckets: []AggregateBucket{
				{Key: "Critical", Count: 2},
				{Key: "High", Count: 10, SubAggregations: []AggregateBucket{{Key: "Open", Count: 7}, {Key: "Closed", Count: 3}}},
			},
		})
	})
	client := newTestClient(t, mux)

	result, err := client.GetSeverityDistribution(SubjectHostFinding)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), result.Total)
	assert.Equal(t, map[string]uint64{"Critical": 2, "High": 10}, result.Counts())

	high, ok := result.Bucket("High")
	require.True(t, ok)
	assert.Equal(t, map[string]uint64{"Open": 7, "Closed": 3}, high.Counts())

	closed, ok := result.Bucket("Closed")
	require.True(t, ok)
	assert.Equal(t, uint64(3), closed.Count)

	_, ok = result.Bucket("Low")
	assert.False(t, ok)
}

func TestAggregateRequiresSubjectAndAggregator(t *testing.T) {
	client := newTestClient(t, newMux(t))

	_, err := client.AggregateRaw("", SeverityDistributionRequest())
	assert.ErrorContains(t, err, "subject")

	_, err = client.AggregateRaw(SubjectHostFinding, AggregateRequest{Field: "severity_group"})
	assert.ErrorContains(t, err, "esAggregator")
}

func TestRS3TrendUsesHistorySubject(t *testing.T) {
	mux := newMux(t)
	mux.HandleFunc("POST /api/v1/client/123/search/rs3History/aggregate", func(w http.ResponseWriter, r *http.Request) {
		body := readJSON(t, r)
		assert.Equal(t, "rs3History", body["subject"])
		assert.Equal(t, "week", body["interval"])
		writeJSON(t, w, AggregateResponse{Buckets: []AggregateBucket{}})
	})
	client := newTestClient(t, mux)

	_, err := client.GetRS3Trend(dashboardNow.AddDate(0, 0, -90), dashboardNow, "")
	require.NoError(t, err)
}

func TestSLAOverviewRequest(t *testing.T) {
	req := SLAOverviewRequest(dashboardNow)
	assert.Equal(t, AggregatorFilters, req.EsAggregator)
	require.Len(t, req.NamedFilters, 3)

	assert.Equal(t, "overdue", req.NamedFilters[0].Name)
	assert.Equal(t, ",2024-08-13", req.NamedFilters[0].FilterRequest.Filters[0].Value)
	assert.Equal(t, "2024-08-14,", req.NamedFilters[1].FilterRequest.Filters[0].Value, "due today is not overdue")

	// the bucket boundary moves across month ends
	req = SLAOverviewRequest(time.Date(2024, 3, 1, 0, 5, 0, 0, time.UTC))
	assert.Equal(t, ",2024-02-29", req.NamedFilters[0].FilterRequest.Filters[0].Value)
	assert.Equal(t, "2024-03-01,", req.NamedFilters[1].FilterRequest.Filters[0].Value)

	noDueDate := req.NamedFilters[2].FilterRequest.Filters[0]
	assert.True(t, noDueDate.Exclusive)
	assert.Equal(t, FilterOperatorWildcard, noDueDate.Operator)

	assert.Equal(t, "generic_state", req.FilterRequest.Filters[0].Field)
	assert.Equal(t, "severity_group", req.SubAggregators[0].Field)
}

func TestFindingsAgingRequest(t *testing.T) {
	req := FindingsAgingRequest(dashboardNow)
	assert.Equal(t, []AggregateRange{
		{Key: "0-30 days", From: "2024-07-15"},
		{Key: "31-60 days", From: "2024-06-15", To: "2024-07-15"},
		{Key: "61-90 days", From: "2024-05-16", To: "2024-06-15"},
		{Key: "90+ days", To: "2024-05-16"},
	}, req.Ranges)

	data, err := json.Marshal(req.Ranges[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"key": "0-30 days", "from": "2024-07-15"}`, string(data))
}

func TestDashboardRequests(t *testing.T) {
	trend := RS3TrendRequest(dashboardNow.AddDate(0, 0, -90), dashboardNow, "")
	assert.Equal(t, SubjectRS3History, trend.Subject)
	assert.Equal(t, "week", trend.Interval)
	assert.Equal(t, "2024-05-16,2024-08-14", trend.FilterRequest.Filters[0].Value)
	assert.Equal(t, AggregatorAverage, trend.SubAggregators[0].EsAggregator)

	velocity := RemediationVelocityRequest(dashboardNow.AddDate(0, 0, -30), time.Time{}, "day")
	assert.Equal(t, "day", velocity.Interval)
	assert.Equal(t, "2024-07-15,", velocity.FilterRequest.Filters[1].Value)

	assert.Equal(t, "host_name", TopVulnerableAssetsRequest(SubjectHostFinding, 10).Field)
	assert.Equal(t, "application_name", TopVulnerableAssetsRequest(SubjectApplicationFinding, 10).Field)
	assert.Equal(t, uint64(10), TopVulnerableAssetsRequest(SubjectHostFinding, 10).Size)

	funnel := WeaponizationFunnelRequest()
	require.Len(t, funnel.NamedFilters, 4)
	for i, nf := range funnel.NamedFilters {
		assert.Len(t, nf.FilterRequest.Filters, i, nf.Name)
	}

	kev := CISAKEVExposureRequest()
	assert.Equal(t, Filter{Field: "cisa_kev", Operator: FilterOperatorExact, Value: "true"}, kev.FilterRequest.Filters[1])

	ransomware := RansomwareExposureRequest()
	assert.Equal(t, "Ransomware", ransomware.FilterRequest.Filters[1].Value)
}

func TestDateRange(t *testing.T) {
	assert.Equal(t, "2024-05-16,2024-08-14", DateRange(time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC), dashboardNow))
	assert.Equal(t, ",2024-08-14", DateRange(time.Time{}, dashboardNow))
	assert.Equal(t, ",", DateRange(time.Time{}, time.Time{}))
}
