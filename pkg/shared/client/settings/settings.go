/*
Copyright 2023 The KodeRover Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package settings reads per-scope platform settings and performs the
// access-control check used on the inbound custom-webhook path.
package settings

import (
	configbase "github.com/vigneswara-propelo/harness-core-sub207/pkg/config"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/tool/httpclient"
)

type Client struct {
	*httpclient.Client
}

func New() *Client {
	return &Client{
		Client: httpclient.New(
			httpclient.SetHostURL(configbase.SettingsServiceAddress()),
			httpclient.SetBaseURI("/api/v1"),
			httpclient.SetClientTimeout(configbase.RequestTimeout()),
		),
	}
}

type settingResponse struct {
	Value string `json:"value"`
}

// WebhookAuthMandatory reports whether the scope requires authorization on
// inbound custom-webhook calls.
func (c *Client) WebhookAuthMandatory(accountID string) (bool, error) {
	res := &settingResponse{}
	_, err := c.Get("/settings/mandate_webhook_secrets",
		httpclient.SetQueryParam("accountIdentifier", accountID), httpclient.SetResult(res))
	if err != nil {
		return false, err
	}

	return res.Value == "true", nil
}

// Scope is the subject scope an authorization check runs against.
type Scope struct {
	AccountID string `json:"account_id"`
	OrgID     string `json:"org_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
}

type authorizeRequest struct {
	Scope      *Scope `json:"scope"`
	Resource   string `json:"resource"`
	Permission string `json:"permission"`
	Principal  string `json:"principal,omitempty"`
}

type authorizeResponse struct {
	Permitted bool `json:"permitted"`
}

func (c *Client) Authorize(scope *Scope, principal, resource, permission string) (bool, error) {
	res := &authorizeResponse{}
	_, err := c.Post("/access-control/check", httpclient.SetBody(&authorizeRequest{
		Scope:      scope,
		Resource:   resource,
		Permission: permission,
		Principal:  principal,
	}), httpclient.SetResult(res))
	if err != nil {
		return false, err
	}

	return res.Permitted, nil
}
