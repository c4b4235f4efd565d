package RSClientGo

// miscellaneous functions (ClientVars & Pagination)

func (c RSClient) GetClientVars() ClientVars {
	return c.consts
}

func (c *RSClient) SetClientVars(clientvars ClientVars) {
	c.consts = clientvars
}

func (c *RSClient) InitializeClientVars() {
	c.consts = ClientVars{
		ConnectorJobPollingMaxSeconds:   1800, // 30 min
		ConnectorJobPollingDelaySeconds: 30,
		TagJobPollingMaxSeconds:         300,
		TagJobPollingDelaySeconds:       10,
	}
}

func (c RSClient) GetPaginationSettings() PaginationSettings {
	return c.pagination
}

func (c *RSClient) SetPaginationSettings(pagination PaginationSettings) {
	c.pagination = pagination
}

func (c *RSClient) InitializePaginationSettings() {
	c.SetPaginationSettings(c.GetPaginationDefaults())
}

func (c *RSClient) GetPaginationDefaults() PaginationSettings {
	return PaginationSettings{
		Clients:       100,
		Connectors:    100,
		ConnectorJobs: 50,
		Groups:        200,
		Search:        500,
		Tags:          200,
		Tickets:       100,
	}
}

func (f *BaseFilter) Bump() {
	f.Page++
}

// true when pages beyond the current one still hold results
func (f BaseFilter) hasMore(total uint64) bool {
	return f.Size > 0 && total > (f.Page+1)*f.Size
}
