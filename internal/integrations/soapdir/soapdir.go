// Package soapdir integrates with the legacy SOAP authentication
// backend that serves user profiles. The client is optional; it is
// only constructed when an endpoint is configured.
package soapdir

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/jmcamacho/auth-portal/internal/apperr"
	"github.com/jmcamacho/auth-portal/internal/config"
	"github.com/jmcamacho/auth-portal/internal/models"
	"github.com/sirupsen/logrus"
)

// Client handles integration with the SOAP profile backend
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new SOAP backend client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.SOAPAuthURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// buildSOAPRequest creates the Backend operation envelope
func (c *Client) buildSOAPRequest(username, password string) (string, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	envelope := doc.CreateElement("soap12:Envelope")
	envelope.CreateAttr("xmlns:soap12", "http://www.w3.org/2003/05/soap-envelope")
	body := envelope.CreateElement("soap12:Body")
	op := body.CreateElement("Backend")
	op.CreateAttr("xmlns", "http://backend.auth/")
	op.CreateElement("username").SetText(username)
	op.CreateElement("password").SetText(password)
	return doc.WriteToString()
}

// sendRequest posts the envelope to the backend
func (c *Client) sendRequest(ctx context.Context, soapRequest string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBufferString(soapRequest))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://backend.auth/Backend")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, apperr.Unauthorized("backend rejected the credentials")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("SOAP backend XML response: %s", string(body))

	return body, nil
}

// parseXMLResponse extracts the profile fields from the response
func (c *Client) parseXMLResponse(rawBody []byte) (*models.Profile, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	el := doc.FindElement("//BackendResponse")
	if el == nil {
		return nil, fmt.Errorf("no BackendResponse element found in XML")
	}

	profile := &models.Profile{
		FirstName:    childText(el, "firstName"),
		LastName:     childText(el, "lastName"),
		ProfilePhoto: childText(el, "profilePhoto"),
		Video:        childText(el, "video"),
	}
	if v, err := strconv.Atoi(childText(el, "resultCode")); err == nil {
		profile.ResultCode = v
	}
	if v, err := strconv.Atoi(childText(el, "age")); err == nil {
		profile.Age = v
	}
	return profile, nil
}

func childText(el *etree.Element, name string) string {
	if child := el.FindElement("./" + name); child != nil {
		return child.Text()
	}
	return ""
}

// Authenticate fetches the profile for username from the SOAP backend.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*models.Profile, error) {
	soapRequest, err := c.buildSOAPRequest(username, password)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	body, err := c.sendRequest(ctx, soapRequest)
	if err != nil {
		return nil, err
	}

	profile, err := c.parseXMLResponse(body)
	if err != nil {
		return nil, err
	}

	c.log.Infof("SOAP backend returned profile for %s, resultCode: %d", username, profile.ResultCode)
	return profile, nil
}
