package RSClientGo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

// this file is for rsclientgo internal functionality like sending HTTP requests

func (c RSClient) createRequest(method, url string, body io.Reader, header *http.Header) (*http.Request, error) {
	request, err := http.NewRequest(method, url, body)
	if err != nil {
		return &http.Request{}, err
	}

	if header != nil {
		for name, headers := range *header {
			for _, h := range headers {
				request.Header.Add(name, h)
			}
		}
	}

	if request.Header.Get("User-Agent") == "" {
		request.Header.Set("User-Agent", c.userAgent)
	}

	if request.Header.Get("Content-Type") == "" {
		request.Header.Set("Content-Type", "application/json")
	}
	if request.Header.Get("Accept") == "" {
		request.Header.Set("Accept", "application/json")
	}

	apiKey, err := c.GetAPIKey()
	if err != nil {
		return &http.Request{}, err
	}
	request.Header.Set("x-api-key", apiKey)

	return request, nil
}

func (c RSClient) sendRequestInternal(method, url string, body io.Reader, header http.Header) ([]byte, error) {
	response, err := c.sendRequestRaw(method, url, body, header)
	var resBody []byte
	if response != nil && response.Body != nil {
		resBody, _ = io.ReadAll(response.Body)
		response.Body.Close()
	}

	return resBody, err
}

func (c RSClient) sendRequestRaw(method, url string, body io.Reader, header http.Header) (*http.Response, error) {
	c.logger.Tracef("Sending %v request to URL %v", method, url)
	request, err := c.createRequest(method, url, body, &header)
	if err != nil {
		c.logger.Tracef("Unable to create request: %s", err)
		return nil, err
	}

	return c.handleHTTPResponse(request)
}

func (c RSClient) handleHTTPResponse(request *http.Request) (*http.Response, error) {
	response, err := c.handleRetries(request)
	if err != nil {
		c.logger.Tracef("Failed HTTP request: '%s'", err)
		return response, err
	}

	if response == nil {
		return nil, fmt.Errorf("nil response")
	}

	if response.StatusCode >= 400 {
		resBody, _ := io.ReadAll(response.Body)
		response.Body.Close()
		response.Body = io.NopCloser(strings.NewReader(""))
		return response, fmt.Errorf("HTTP %v: %v", response.Status, errorMessage(resBody))
	}
	return response, nil
}

// pulls a human-readable message out of a platform error body
func errorMessage(resBody []byte) string {
	var msg map[string]interface{}
	if err := json.Unmarshal(resBody, &msg); err == nil {
		for _, key := range []string{"message", "error_description", "error", "errorMessage", "detail"} {
			if str, ok := msg[key].(string); ok && str != "" {
				return str
			}
		}
		if errs, ok := msg["errors"].([]interface{}); ok && len(errs) > 0 {
			if first, ok := errs[0].(map[string]interface{}); ok {
				if str, ok := first["message"].(string); ok {
					return str
				}
			}
		}
	}

	str := string(resBody)
	if len(str) > 100 {
		str = str[:100]
	}
	return str
}

func (c RSClient) handleRetries(request *http.Request) (*http.Response, error) {
	response, err := c.httpClient.Do(request)
	if err != nil && strings.Contains(err.Error(), "tls: user canceled") && request.Method == http.MethodGet { // tls: user canceled can be due to proxies
		c.logger.Warnf("Potentially benign error from HTTP connection: %s", err)
		return response, nil
	}

	delay := c.retryDelay
	for attempt := 1; attempt <= c.maxRetries && shouldRetry(response, err); attempt++ {
		if response != nil {
			c.logger.Warnf("Response status %v: waiting %d seconds for retry attempt %d", response.Status, delay, attempt)
			_, _ = io.Copy(io.Discard, response.Body)
			response.Body.Close()
		} else {
			c.logger.Warnf("Request error %s: waiting %d seconds for retry attempt %d", err, delay, attempt)
		}

		if delay > 0 {
			jitter := time.Duration(rand.Intn(1000)) * time.Millisecond // Up to 1 second of jitter
			time.Sleep(time.Duration(delay)*time.Second + jitter)
		}

		if request.GetBody != nil {
			body, berr := request.GetBody()
			if berr != nil {
				return nil, fmt.Errorf("failed to rewind request body for retry: %s", berr)
			}
			request.Body = body
		}
		response, err = c.httpClient.Do(request)
		delay *= 2
	}

	return response, err
}

func shouldRetry(response *http.Response, err error) bool {
	if err != nil {
		return isRetryableError(err)
	}
	return response != nil && response.StatusCode >= 500 && response.StatusCode < 600
}

func isRetryableError(err error) bool {
	// Check for network errors
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true
		}
	}

	// Check for DNS errors
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	return false
}

// platform-level paths, eg: /client
func (c RSClient) sendRequest(method, url string, body io.Reader, header http.Header) ([]byte, error) {
	rsurl := fmt.Sprintf("%v/api/v1%v", c.baseUrl, url)
	return c.sendRequestInternal(method, rsurl, body, header)
}

// paths under the configured client, eg: /connector becomes /api/v1/client/{clientId}/connector
func (c RSClient) sendRequestClient(method, url string, body io.Reader, header http.Header) ([]byte, error) {
	rsurl := fmt.Sprintf("%v/api/v1/client/%d%v", c.baseUrl, c.clientID, url)
	return c.sendRequestInternal(method, rsurl, body, header)
}

func (c RSClient) GetUserAgent() string {
	return c.userAgent
}
func (c *RSClient) SetUserAgent(ua string) {
	c.userAgent = ua
}

func (c RSClient) GetRetries() (retries, delay int) {
	return c.maxRetries, c.retryDelay
}

func (c *RSClient) SetRetries(retries, delay int) {
	c.maxRetries = retries
	c.retryDelay = delay
}
