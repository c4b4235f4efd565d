package RSClientGo

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

type RSClient struct {
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
	baseUrl     string
	clientID    uint64
	logger      *logrus.Logger
	consts      ClientVars
	pagination  PaginationSettings

	client     *Client
	userAgent  string
	maxRetries int
	retryDelay int
}

type ClientVars struct {
	ConnectorJobPollingMaxSeconds   int
	ConnectorJobPollingDelaySeconds int
	TagJobPollingMaxSeconds         int
	TagJobPollingDelaySeconds       int
}

// Related to pagination and filtering
type PaginationSettings struct {
	Clients       uint64
	Connectors    uint64
	ConnectorJobs uint64
	Groups        uint64
	Search        uint64
	Tags          uint64
	Tickets       uint64
}

// RiskSense pages are zero-based
type BaseFilter struct {
	Page uint64 `url:"page" json:"page"`
	Size uint64 `url:"size" json:"size"` // should generally not be 0
}

type PageInfo struct {
	Size          uint64 `json:"size"`
	TotalElements uint64 `json:"totalElements"`
	TotalPages    uint64 `json:"totalPages"`
	Number        uint64 `json:"number"`
}

type SortOrder struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

type Subject string

const (
	SubjectHostFinding        Subject = "hostFinding"
	SubjectApplicationFinding Subject = "applicationFinding"
	SubjectHost               Subject = "host"
	SubjectApplication        Subject = "application"
	SubjectRS3History         Subject = "rs3History"
)

type Client struct {
	ClientID    uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

type ClientFilter struct {
	BaseFilter
}

type Group struct {
	GroupID     uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Search filters
type Filter struct {
	Field     string `json:"field"`
	Exclusive bool   `json:"exclusive"`
	Operator  string `json:"operator"`
	Value     string `json:"value"`
}

type FilterRequest struct {
	Filters []Filter `json:"filters"`
}

const (
	FilterOperatorExact    = "EXACT"
	FilterOperatorIn       = "IN"
	FilterOperatorLike     = "LIKE"
	FilterOperatorWildcard = "WILDCARD"
	FilterOperatorRange    = "RANGE"
)

type FilterField struct {
	UID         string   `json:"uid"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Operators   []string `json:"operators"`
}

type QuickFilter struct {
	UID           string        `json:"uid"`
	Label         string        `json:"label"`
	Count         uint64        `json:"count"`
	FilterRequest FilterRequest `json:"filterRequest"`
}

type SearchFilter struct {
	BaseFilter
	FilterRequest
	Projection string      `json:"projection,omitempty"`
	Sort       []SortOrder `json:"sort,omitempty"`
}

type Finding struct {
	FindingID     uint64   `json:"id"`
	Title         string   `json:"title"`
	Severity      float64  `json:"severity"`
	SeverityGroup string   `json:"severityGroup"`
	State         string   `json:"state"`
	AssetName     string   `json:"assetName"`
	DueDate       RSTime   `json:"dueDate"`
	Vulnerability []string `json:"vulnerabilities"`
}

// Tags
type Tag struct {
	TagID       uint64 `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Locked      bool   `json:"locked"`
}

type TagRequest struct {
	Name        string
	Type        string
	Description string
	Owner       uint64
	Color       string
	Locked      bool
}

const (
	TagTypeCustom      = "CUSTOM"
	TagTypeRemediation = "REMEDIATION"
	TagTypeProject     = "PROJECT"
)

type TagFilter struct {
	BaseFilter
	FilterRequest
}

type TagJob struct {
	JobID  uint64 `json:"id"`
	Status string `json:"status"`
}

// Connectors
type Connector struct {
	ConnectorID    uint64                 `json:"id"`
	Type           ConnectorType          `json:"type"`
	Name           string                 `json:"name"`
	Connection     ConnectorConnection    `json:"connection"`
	Schedule       ConnectorSchedule      `json:"schedule"`
	Attributes     map[string]interface{} `json:"attributes,omitempty"`
	ConnectorField map[string]interface{} `json:"connectorField,omitempty"`
	AutoURBA       bool                   `json:"autoUrba"`
	LastJob        *ConnectorJob          `json:"lastJob,omitempty"`
}

// the platform never returns secrets, so only the non-secret connection values are decoded
type ConnectorConnection struct {
	URL          string `json:"url"`
	Username     string `json:"username,omitempty"`
	AccessKey    string `json:"accessKey,omitempty"`
	ClientID     string `json:"clientId,omitempty"`
	TenantID     string `json:"tenantId,omitempty"`
	Region       string `json:"region,omitempty"`
	Organization string `json:"organization,omitempty"`
}

type ConnectorFilter struct {
	BaseFilter
	FilterRequest
}

type ConnectorJob struct {
	JobID       uint64 `json:"id"`
	ConnectorID uint64 `json:"connectorId"`
	Status      string `json:"status"`
	Message     string `json:"message"`
	StartedAt   RSTime `json:"startedAt"`
	FinishedAt  RSTime `json:"finishedAt"`
}

const (
	JobStatusQueued    = "QUEUED"
	JobStatusRunning   = "RUNNING"
	JobStatusCompleted = "COMPLETED"
	JobStatusFailed    = "FAILED"
	JobStatusCancelled = "CANCELLED"
)

type ConnectorJobFilter struct {
	BaseFilter
	Status string `url:"status,omitempty"`
}

// Aggregates
type AggregateRequest struct {
	Subject        Subject            `json:"subject,omitempty"`
	Field          string             `json:"field,omitempty"`
	EsAggregator   string             `json:"esAggregator"`
	Size           uint64             `json:"size,omitempty"`
	Interval       string             `json:"interval,omitempty"`
	Ranges         []AggregateRange   `json:"ranges,omitempty"`
	NamedFilters   []NamedFilter      `json:"namedFilters,omitempty"`
	FilterRequest  *FilterRequest     `json:"filterRequest,omitempty"`
	SubAggregators []AggregateRequest `json:"subAggregators,omitempty"`
}

const (
	AggregatorTerms         = "TERMS"
	AggregatorFilters       = "FILTERS"
	AggregatorDateHistogram = "DATE_HISTOGRAM"
	AggregatorDateRange     = "DATE_RANGE"
	AggregatorCardinality   = "CARDINALITY"
	AggregatorAverage       = "AVG"
)

type AggregateRange struct {
	Key  string `json:"key"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

type NamedFilter struct {
	Name          string        `json:"name"`
	FilterRequest FilterRequest `json:"filterRequest"`
}

type AggregateResponse struct {
	Total   uint64            `json:"total"`
	Buckets []AggregateBucket `json:"buckets"`
}

type AggregateBucket struct {
	Key             string            `json:"key"`
	Count           uint64            `json:"count"`
	Value           float64           `json:"value,omitempty"`
	SubAggregations []AggregateBucket `json:"subAggregations,omitempty"`
}

// Tickets
type TicketFormField struct {
	FieldName   string                 `json:"fieldName"`
	DisplayName string                 `json:"displayName"`
	Required    bool                   `json:"required"`
	FieldType   string                 `json:"fieldType"`
	Values      []TicketFieldValue     `json:"values,omitempty"`
	Dependency  *TicketFieldDependency `json:"dependency,omitempty"`
	Value       string                 `json:"value,omitempty"`
}

const (
	TicketFieldDropdown = "DROPDOWN"
	TicketFieldText     = "TEXT"
	TicketFieldTextArea = "TEXTAREA"
	TicketFieldDate     = "DATE"
)

type TicketFieldValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// FieldRef: the dropdown values depend on the value chosen for another field
// SameAs: the value is copied from another field
type TicketFieldDependency struct {
	FieldRef string `json:"FieldRef,omitempty"`
	SameAs   string `json:"sameAs,omitempty"`
}

type TicketFieldError struct {
	FieldName string `json:"fieldName"`
	Message   string `json:"message"`
}

type TicketValidation struct {
	Valid  bool               `json:"valid"`
	Errors []TicketFieldError `json:"errors"`
}

type TicketRequest struct {
	ConnectorID   uint64
	FilterRequest FilterRequest
	Fields        []TicketFormField
}

type Ticket struct {
	TicketID     uint64 `json:"id"`
	ConnectorID  uint64 `json:"connectorId"`
	TicketNumber string `json:"ticketNumber"`
	TicketURL    string `json:"ticketUrl"`
	Status       string `json:"status"`
	CreatedAt    RSTime `json:"createdAt"`
}

type TicketFilter struct {
	BaseFilter
	ConnectorID uint64 `url:"connectorId,omitempty"`
	Status      string `url:"status,omitempty"`
}

type RSTime struct {
	time.Time
}
