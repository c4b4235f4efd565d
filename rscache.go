package RSClientGo

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// RSCache holds lists that change rarely so that interactive tools do not refetch them
// on every prompt. Lookups keyed by request (filter fields, dropdown values) expire after ttl.
type RSCache struct {
	ConnectorRefresh   bool
	Connectors         []Connector
	TagRefresh         bool
	Tags               []Tag
	GroupRefresh       bool
	Groups             []Group
	QuickFilterRefresh bool
	QuickFilters       map[Subject][]QuickFilter

	lookups *cache.Cache
}

func NewRSCache(ttl time.Duration) *RSCache {
	return &RSCache{
		QuickFilters: make(map[Subject][]QuickFilter),
		lookups:      cache.New(ttl, 2*ttl),
	}
}

func (c *RSCache) ConnectorSummary() string {
	return fmt.Sprintf("%d connectors", len(c.Connectors))
}
func (c *RSCache) TagSummary() string {
	return fmt.Sprintf("%d tags", len(c.Tags))
}
func (c *RSCache) GroupSummary() string {
	return fmt.Sprintf("%d groups", len(c.Groups))
}
func (c *RSCache) QuickFilterSummary() string {
	count := 0
	for _, qf := range c.QuickFilters {
		count += len(qf)
	}
	return fmt.Sprintf("%d quick filters across %d subjects", count, len(c.QuickFilters))
}

func (c *RSCache) RefreshConnectors(client *RSClient) error {
	client.logger.Info("Refreshing connectors in cache")
	var err error
	if !c.ConnectorRefresh {
		c.ConnectorRefresh = true
		c.Connectors, err = client.GetAllConnectors()
		c.ConnectorRefresh = false
	}
	return err
}

func (c *RSCache) RefreshTags(client *RSClient) error {
	client.logger.Info("Refreshing tags in cache")
	var err error
	if !c.TagRefresh {
		c.TagRefresh = true
		c.Tags, err = client.GetTags()
		c.TagRefresh = false
	}
	return err
}

func (c *RSCache) RefreshGroups(client *RSClient) error {
	client.logger.Info("Refreshing groups in cache")
	var err error
	if !c.GroupRefresh {
		c.GroupRefresh = true
		c.Groups, err = client.GetGroups()
		c.GroupRefresh = false
	}
	return err
}

func (c *RSCache) RefreshQuickFilters(client *RSClient, subjects ...Subject) error {
	client.logger.Info("Refreshing quick filters in cache")
	if c.QuickFilterRefresh {
		return nil
	}
	c.QuickFilterRefresh = true
	defer func() { c.QuickFilterRefresh = false }()

	if c.QuickFilters == nil {
		c.QuickFilters = make(map[Subject][]QuickFilter)
	}
	for _, subject := range subjects {
		qf, err := client.GetQuickFilters(subject)
		if err != nil {
			client.logger.Tracef("Failed while retrieving quick filters for %v: %s", subject, err)
			return err
		}
		c.QuickFilters[subject] = qf
	}
	return nil
}

func (c *RSCache) Refresh(client *RSClient) []error {
	var errs []error

	if err := c.RefreshConnectors(client); err != nil {
		errs = append(errs, err)
	}
	if err := c.RefreshTags(client); err != nil {
		errs = append(errs, err)
	}
	if err := c.RefreshGroups(client); err != nil {
		errs = append(errs, err)
	}
	if err := c.RefreshQuickFilters(client, SubjectHostFinding, SubjectApplicationFinding); err != nil {
		errs = append(errs, err)
	}
	c.lookups.Flush()

	return errs
}

func (c *RSCache) GetConnector(connectorID uint64) (*Connector, error) {
	for id, conn := range c.Connectors {
		if conn.ConnectorID == connectorID {
			return &c.Connectors[id], nil
		}
	}
	return nil, fmt.Errorf("no such connector %d", connectorID)
}

func (c *RSCache) GetConnectorByName(name string) (*Connector, error) {
	for id, conn := range c.Connectors {
		if strings.EqualFold(conn.Name, name) {
			return &c.Connectors[id], nil
		}
	}
	return nil, fmt.Errorf("no such connector %v", name)
}

// ticketing connectors only, used to pick where a ticket goes
func (c *RSCache) GetTicketingConnectors() []Connector {
	var connectors []Connector
	for _, conn := range c.Connectors {
		if conn.Type.IsTicketing() {
			connectors = append(connectors, conn)
		}
	}
	return connectors
}

func (c *RSCache) GetTag(tagID uint64) (*Tag, error) {
	for id, t := range c.Tags {
		if t.TagID == tagID {
			return &c.Tags[id], nil
		}
	}
	return nil, fmt.Errorf("no such tag %d", tagID)
}

func (c *RSCache) GetTagByName(name string) (*Tag, error) {
	for id, t := range c.Tags {
		if t.Name == name {
			return &c.Tags[id], nil
		}
	}
	return nil, fmt.Errorf("no such tag %v", name)
}

func (c *RSCache) GetGroupByName(name string) (*Group, error) {
	for id, g := range c.Groups {
		if g.Name == name {
			return &c.Groups[id], nil
		}
	}
	return nil, fmt.Errorf("no such group %v", name)
}

func (c *RSCache) GetQuickFilterByLabel(subject Subject, label string) (*QuickFilter, error) {
	for id, qf := range c.QuickFilters[subject] {
		if strings.EqualFold(qf.Label, label) || strings.EqualFold(qf.UID, label) {
			return &c.QuickFilters[subject][id], nil
		}
	}
	return nil, fmt.Errorf("no such quick filter %v for %v", label, subject)
}

func (c *RSCache) GetFilterFields(client *RSClient, subject Subject) ([]FilterField, error) {
	key := fmt.Sprintf("fields/%v", subject)
	if v, ok := c.lookups.Get(key); ok {
		return v.([]FilterField), nil
	}

	fields, err := client.GetFilterFields(subject)
	if err != nil {
		return fields, err
	}
	c.lookups.SetDefault(key, fields)
	return fields, nil
}

func (c *RSCache) GetTicketFieldValues(client *RSClient, connectorID uint64, fieldName string, dependencies map[string]string) ([]TicketFieldValue, error) {
	key := valuesKey(connectorID, fieldName, dependencies)
	if v, ok := c.lookups.Get(key); ok {
		client.logger.Tracef("Using cached values for ticket field %v", fieldName)
		return v.([]TicketFieldValue), nil
	}

	values, err := client.GetTicketFieldValues(connectorID, fieldName, dependencies)
	if err != nil {
		return values, err
	}
	c.lookups.SetDefault(key, values)
	return values, nil
}

func valuesKey(connectorID uint64, fieldName string, dependencies map[string]string) string {
	deps := make([]string, 0, len(dependencies))
	for k, v := range dependencies {
		deps = append(deps, k+"="+v)
	}
	sort.Strings(deps)
	return fmt.Sprintf("values/%d/%v?%v", connectorID, fieldName, strings.Join(deps, "&"))
}
