package RSClientGo

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slices"
)

type ConnectorType string

const (
	// scanners
	ConnectorNessus                ConnectorType = "NESSUS"
	ConnectorNexpose               ConnectorType = "NEXPOSE"
	ConnectorTenableSecurityCenter ConnectorType = "TENABLE_SECURITY_CENTER"
	ConnectorTenableIO             ConnectorType = "TENABLE_IO"
	ConnectorQualysVulnerability   ConnectorType = "QUALYS_VULNERABILITY"
	ConnectorQualysAsset           ConnectorType = "QUALYS_ASSET"
	ConnectorQualysWAS             ConnectorType = "QUALYS_WAS"
	ConnectorBurpSuiteEnterprise   ConnectorType = "BURPSUITE_ENTERPRISE"
	ConnectorWhiteHatSentinel      ConnectorType = "WHITEHAT_SENTINEL"
	ConnectorVeracode              ConnectorType = "VERACODE"
	ConnectorCheckmarxSAST         ConnectorType = "CHECKMARX_SAST"
	ConnectorHCLAppScan            ConnectorType = "HCL_APPSCAN"
	ConnectorSonatypeNexusIQ       ConnectorType = "SONATYPE_NEXUS_IQ"
	ConnectorSonarCloud            ConnectorType = "SONARCLOUD"
	ConnectorSnyk                  ConnectorType = "SNYK"
	ConnectorCrowdStrikeSpotlight  ConnectorType = "CROWDSTRIKE_SPOTLIGHT"
	ConnectorMSDefenderATP         ConnectorType = "MS_DEFENDER_ATP"
	ConnectorAWSInspector          ConnectorType = "AWS_INSPECTOR"
	ConnectorPrismaCloud           ConnectorType = "PRISMA_CLOUD"
	ConnectorJFrogXray             ConnectorType = "JFROG_XRAY"

	// ticketing
	ConnectorJira               ConnectorType = "JIRA"
	ConnectorSNOWIncident       ConnectorType = "SNOW_INCIDENT"
	ConnectorSNOWServiceRequest ConnectorType = "SNOW_SERVICE_REQUEST"
	ConnectorCherwell           ConnectorType = "CHERWELL"
	ConnectorIvantiITSM         ConnectorType = "IVANTI_ITSM"
)

type ConnectorCategory string

const (
	ConnectorCategoryScanner   ConnectorCategory = "SCANNER"
	ConnectorCategoryTicketing ConnectorCategory = "TICKETING"
)

// credential keys sent in the connection block
const (
	credUsername     = "username"
	credPassword     = "password"
	credAccessKey    = "accessKey"
	credSecretKey    = "secretKey"
	credAPIKey       = "apiKey"
	credClientID     = "clientId"
	credClientSecret = "clientSecret"
	credTenantID     = "tenantId"
	credRegion       = "region"
	credOrganization = "organization"
)

// secrets are never returned by the platform, so they may be left out of updates
var secretCredentials = []string{credPassword, credSecretKey, credAPIKey, credClientSecret}

type connectorTypeSpec struct {
	Category    ConnectorCategory
	Credentials []string
	Attributes  []string // attributes for scanners, connectorField for ticketing
}

var connectorTypeSpecs = map[ConnectorType]connectorTypeSpec{
	ConnectorNessus: {ConnectorCategoryScanner,
		[]string{credUsername, credPassword},
		[]string{"historicalDateFilter"}},
	ConnectorNexpose: {ConnectorCategoryScanner,
		[]string{credUsername, credPassword},
		[]string{"historicalDateFilter", "importClosedFindings"}},
	ConnectorTenableSecurityCenter: {ConnectorCategoryScanner,
		[]string{credUsername, credPassword},
		[]string{"historicalDateFilter", "severities"}},
	ConnectorTenableIO: {ConnectorCategoryScanner,
		[]string{credAccessKey, credSecretKey},
		[]string{"historicalDateFilter", "severities", "assetTags"}},
	ConnectorQualysVulnerability: {ConnectorCategoryScanner,
		[]string{credUsername, credPassword},
		[]string{"reportTypesToDownload", "historicalDateFilter", "importClosedFindings"}},
	ConnectorQualysAsset: {ConnectorCategoryScanner,
		[]string{credUsername, credPassword},
		[]string{"assetTags"}},
	ConnectorQualysWAS: {ConnectorCategoryScanner,
		[]string{credUsername, credPassword},
		[]string{"applicationNames", "historicalDateFilter"}},
	ConnectorBurpSuiteEnterprise: {ConnectorCategoryScanner,
		[]string{credAPIKey},
		[]string{"applicationNames"}},
	ConnectorWhiteHatSentinel: {ConnectorCategoryScanner,
		[]string{credAPIKey},
		[]string{"applicationNames", "importClosedFindings"}},
	ConnectorVeracode: {ConnectorCategoryScanner,
		[]string{credClientID, credClientSecret},
		[]string{"applicationNames", "scanTypes"}},
	ConnectorCheckmarxSAST: {ConnectorCategoryScanner,
		[]string{credUsername, credPassword},
		[]string{"projectKeys", "severities"}},
	ConnectorHCLAppScan: {ConnectorCategoryScanner,
		[]string{credClientID, credClientSecret},
		[]string{"applicationNames"}},
	ConnectorSonatypeNexusIQ: {ConnectorCategoryScanner,
		[]string{credUsername, credPassword},
		[]string{"applicationNames"}},
	ConnectorSonarCloud: {ConnectorCategoryScanner,
		[]string{credAPIKey, credOrganization},
		[]string{"projectKeys", "severities"}},
	ConnectorSnyk: {ConnectorCategoryScanner,
		[]string{credAPIKey, credOrganization},
		[]string{"projectKeys"}},
	ConnectorCrowdStrikeSpotlight: {ConnectorCategoryScanner,
		[]string{credClientID, credClientSecret},
		[]string{"historicalDateFilter", "severities"}},
	ConnectorMSDefenderATP: {ConnectorCategoryScanner,
		[]string{credTenantID, credClientID, credClientSecret},
		[]string{"historicalDateFilter"}},
	ConnectorAWSInspector: {ConnectorCategoryScanner,
		[]string{credAccessKey, credSecretKey, credRegion},
		[]string{"accountIds", "severities"}},
	ConnectorPrismaCloud: {ConnectorCategoryScanner,
		[]string{credAccessKey, credSecretKey},
		[]string{"accountIds"}},
	ConnectorJFrogXray: {ConnectorCategoryScanner,
		[]string{credUsername, credPassword},
		[]string{"projectKeys"}},

	ConnectorJira: {ConnectorCategoryTicketing,
		[]string{credUsername, credPassword},
		[]string{"projectKey", "issueType", "assignee"}},
	ConnectorSNOWIncident: {ConnectorCategoryTicketing,
		[]string{credUsername, credPassword},
		[]string{"assignmentGroup", "category", "impact"}},
	ConnectorSNOWServiceRequest: {ConnectorCategoryTicketing,
		[]string{credUsername, credPassword},
		[]string{"assignmentGroup", "catalogItem"}},
	ConnectorCherwell: {ConnectorCategoryTicketing,
		[]string{credUsername, credPassword, credClientID},
		[]string{"businessObject", "team", "service"}},
	ConnectorIvantiITSM: {ConnectorCategoryTicketing,
		[]string{credAPIKey},
		[]string{"businessObject", "team", "category"}},
}

func ConnectorTypes() []ConnectorType {
	types := make([]ConnectorType, 0, len(connectorTypeSpecs))
	for t := range connectorTypeSpecs {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func (t ConnectorType) IsValid() bool {
	_, ok := connectorTypeSpecs[t]
	return ok
}

func (t ConnectorType) Category() ConnectorCategory {
	return connectorTypeSpecs[t].Category
}

func (t ConnectorType) IsTicketing() bool {
	return t.Category() == ConnectorCategoryTicketing
}

// the attribute (or connectorField, for ticketing connectors) keys sent for this connector type
func (t ConnectorType) AttributeKeys() []string {
	return slices.Clone(connectorTypeSpecs[t].Attributes)
}

// the connection keys required for this connector type, not counting the url
func (t ConnectorType) CredentialKeys() []string {
	return slices.Clone(connectorTypeSpecs[t].Credentials)
}

// Credentials for a connector connection. Only the fields required by the connector type are sent.
type ConnectorCredentials struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	AccessKey    string `json:"accessKey"`
	SecretKey    string `json:"secretKey"`
	APIKey       string `json:"apiKey"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	TenantID     string `json:"tenantId"`
	Region       string `json:"region"`
	Organization string `json:"organization"`
}

// Options for scanner connectors. Only the keys listed for the connector type are sent.
type ScannerAttributes struct {
	HistoricalDateFilter  int      `json:"historicalDateFilter"` // days of history to import
	ImportClosedFindings  bool     `json:"importClosedFindings"`
	ReportTypesToDownload []string `json:"reportTypesToDownload"`
	Severities            []string `json:"severities"`
	AssetTags             []string `json:"assetTags"`
	ApplicationNames      []string `json:"applicationNames"`
	ScanTypes             []string `json:"scanTypes"`
	ProjectKeys           []string `json:"projectKeys"`
	AccountIDs            []string `json:"accountIds"`
}

// Options for ticketing connectors, sent as the connectorField block
type TicketingFields struct {
	ProjectKey      string `json:"projectKey"`
	IssueType       string `json:"issueType"`
	Assignee        string `json:"assignee"`
	AssignmentGroup string `json:"assignmentGroup"`
	Category        string `json:"category"`
	Impact          string `json:"impact"`
	CatalogItem     string `json:"catalogItem"`
	BusinessObject  string `json:"businessObject"`
	Team            string `json:"team"`
	Service         string `json:"service"`

	// optional, sent only when set
	Mappings []FieldMapping `json:"mappings,omitempty"`
}

// copies a RiskSense finding field into a ticket field
type FieldMapping struct {
	RiskSenseField string `json:"riskSenseField"`
	TicketField    string `json:"ticketField"`
}

var requestValidator = validator.New()

type ConnectorRequest struct {
	Type        ConnectorType
	Name        string `validate:"required"`
	URL         string `validate:"required,url"`
	Credentials ConnectorCredentials
	Schedule    ConnectorSchedule
	AutoURBA    bool

	Attributes ScannerAttributes // scanner connectors
	Fields     TicketingFields   // ticketing connectors
}

func (r ConnectorRequest) String() string {
	return fmt.Sprintf("%v connector %v (%v)", r.Type, r.Name, r.URL)
}

// builds the create/update body; with update=true missing secrets are left out so the platform keeps its stored values
func (r ConnectorRequest) body(update bool) (map[string]interface{}, error) {
	typeSpec, ok := connectorTypeSpecs[r.Type]
	if !ok {
		return nil, fmt.Errorf("unknown connector type %v", r.Type)
	}
	if err := requestValidator.Struct(r); err != nil {
		return nil, fmt.Errorf("invalid %v: %s", r, err)
	}

	creds, err := structToMap(r.Credentials)
	if err != nil {
		return nil, err
	}

	connection := map[string]interface{}{
		"url": r.URL,
	}
	for _, key := range typeSpec.Credentials {
		if v, _ := creds[key].(string); v != "" {
			connection[key] = v
		} else if !update || !slices.Contains(secretCredentials, key) {
			return nil, fmt.Errorf("connector type %v requires credential %v", r.Type, key)
		}
	}

	schedule, err := r.Schedule.body()
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"type":       r.Type,
		"name":       r.Name,
		"connection": connection,
		"schedule":   schedule,
		"autoUrba":   r.AutoURBA,
	}

	if typeSpec.Category == ConnectorCategoryTicketing {
		fields, err := selectKeys(r.Fields, typeSpec.Attributes)
		if err != nil {
			return nil, err
		}
		if len(r.Fields.Mappings) > 0 {
			fields["mappings"] = r.Fields.Mappings
		}
		data["connectorField"] = fields
	} else {
		attributes, err := selectKeys(r.Attributes, typeSpec.Attributes)
		if err != nil {
			return nil, err
		}
		data["attributes"] = attributes
	}

	return data, nil
}

// turns an existing connector back into a request, eg: to change the schedule
// secrets are not returned by the platform and stay empty
func PopulateConnectorRequest(connector Connector) (ConnectorRequest, error) {
	request := ConnectorRequest{
		Type:     connector.Type,
		Name:     connector.Name,
		URL:      connector.Connection.URL,
		Schedule: connector.Schedule,
		AutoURBA: connector.AutoURBA,
		Credentials: ConnectorCredentials{
			Username:     connector.Connection.Username,
			AccessKey:    connector.Connection.AccessKey,
			ClientID:     connector.Connection.ClientID,
			TenantID:     connector.Connection.TenantID,
			Region:       connector.Connection.Region,
			Organization: connector.Connection.Organization,
		},
	}

	if err := mapToStruct(connector.Attributes, &request.Attributes); err != nil {
		return request, fmt.Errorf("failed to parse attributes of connector %d: %s", connector.ConnectorID, err)
	}
	if err := mapToStruct(connector.ConnectorField, &request.Fields); err != nil {
		return request, fmt.Errorf("failed to parse connectorField of connector %d: %s", connector.ConnectorID, err)
	}
	return request, nil
}

func selectKeys(v interface{}, keys []string) (map[string]interface{}, error) {
	all, err := structToMap(v)
	if err != nil {
		return nil, err
	}
	selected := make(map[string]interface{}, len(keys))
	for _, key := range keys {
		val, ok := all[key]
		if !ok {
			return nil, fmt.Errorf("no option provides attribute %v", key)
		}
		if val == nil { // empty slices should still be sent as lists
			val = []string{}
		}
		selected[key] = val
	}
	return selected, nil
}

func structToMap(v interface{}) (map[string]interface{}, error) {
	jsonBody, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	err = json.Unmarshal(jsonBody, &m)
	return m, err
}

func mapToStruct(m map[string]interface{}, v interface{}) error {
	if len(m) == 0 {
		return nil
	}
	jsonBody, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonBody, v)
}
