package RSClientGo

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// Main entry for users of this client when using a RiskSense API key
func NewAPIKeyClient(client *http.Client, platform_url, api_key string, client_id uint64, logger *logrus.Logger) (*RSClient, error) {
	if api_key == "" {
		return nil, fmt.Errorf("unable to create client: invalid parameters provided, requires API key")
	}
	return NewTokenSourceClient(client, platform_url, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: api_key}), client_id, logger)
}

// Entry for callers that rotate API keys: the token source is asked for the key before each request
// and the AccessToken is sent as the x-api-key header
func NewTokenSourceClient(client *http.Client, platform_url string, source oauth2.TokenSource, client_id uint64, logger *logrus.Logger) (*RSClient, error) {
	cli, err := newClient(client, platform_url, source, client_id, logger)
	if err != nil {
		return nil, err
	}

	if err := cli.InitializeClient(false); err != nil {
		return nil, err
	}
	return cli, nil
}

// Creates the client without contacting the platform
func ResumeAPIKeyClient(client *http.Client, platform_url, api_key string, client_id uint64, logger *logrus.Logger) (*RSClient, error) {
	if api_key == "" {
		return nil, fmt.Errorf("unable to create client: invalid parameters provided, requires API key")
	}
	cli, err := newClient(client, platform_url, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: api_key}), client_id, logger)
	if err != nil {
		return nil, err
	}
	_ = cli.InitializeClient(true)
	return cli, nil
}

func newClient(client *http.Client, platform_url string, source oauth2.TokenSource, client_id uint64, logger *logrus.Logger) (*RSClient, error) {
	if client == nil || platform_url == "" || source == nil || client_id == 0 || logger == nil {
		return nil, fmt.Errorf("unable to create client: invalid parameters provided, requires http client, platform url, token source, client id and logger")
	}

	platform_url = strings.TrimSuffix(platform_url, "/")
	platform_url = strings.TrimSuffix(platform_url, "/api/v1")

	return &RSClient{
		httpClient:  client,
		tokenSource: oauth2.ReuseTokenSource(nil, source),
		baseUrl:     platform_url,
		clientID:    client_id,
		logger:      logger,
	}, nil
}

func (c RSClient) String() string {
	if c.client != nil {
		return fmt.Sprintf("%v (%d) on %v", c.client.Name, c.clientID, c.baseUrl)
	}
	return fmt.Sprintf("client %d on %v", c.clientID, c.baseUrl)
}

func (c *RSClient) InitializeClient(quick bool) error {
	c.SetUserAgent("RSClientGo")
	c.SetRetries(3, 2)
	c.InitializeClientVars()
	c.InitializePaginationSettings()

	if !quick {
		client, err := c.GetClientByID(c.clientID)
		if err != nil {
			return fmt.Errorf("failed to retrieve risksense client %d: %s", c.clientID, err)
		}
		c.client = &client
		c.logger.Debugf("Connected to client %v", client.Name)
	}

	return nil
}

func (c RSClient) GetClientID() uint64 {
	return c.clientID
}

func (c RSClient) GetPlatformURL() string {
	return c.baseUrl
}

// returns the client (tenant) details retrieved during initialization, if any
func (c RSClient) GetCurrentClient() (Client, error) {
	if c.client == nil {
		return Client{}, fmt.Errorf("client details were not retrieved during initialization")
	}
	return *c.client, nil
}

func (c RSClient) GetAPIKey() (string, error) {
	token, err := c.tokenSource.Token()
	if err != nil {
		return "", fmt.Errorf("failed to get api key from token source: %w", err)
	}

	return token.AccessToken, nil
}
