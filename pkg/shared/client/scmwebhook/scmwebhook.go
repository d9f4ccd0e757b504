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

// Package scmwebhook talks to the webhook registration service, which owns
// the provider-specific mechanics of creating hooks on source-control systems.
package scmwebhook

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
			httpclient.SetHostURL(configbase.WebhookServiceAddress()),
			httpclient.SetBaseURI("/api/v1"),
			httpclient.SetClientTimeout(configbase.RequestTimeout()),
		),
	}
}

// UpsertRequest describes the hook to create or refresh on the provider.
type UpsertRequest struct {
	AccountID    string   `json:"account_id"`
	ConnectorRef string   `json:"connector_ref"`
	RepoURL      string   `json:"repo_url"`
	SecretRef    string   `json:"secret_ref,omitempty"`
	Events       []string `json:"events"`
}

type UpsertResponse struct {
	Status    string `json:"status"`
	WebhookID string `json:"webhook_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

const (
	UpsertStatusSuccess = "SUCCESS"
	UpsertStatusFailed  = "FAILED"
)

func (c *Client) Upsert(req *UpsertRequest) (*UpsertResponse, error) {
	res := &UpsertResponse{}
	_, err := c.Post("/webhooks", httpclient.SetBody(req), httpclient.SetResult(res))
	if err != nil {
		return nil, err
	}

	return res, nil
}

// HookDescriptor identifies a previously registered hook.
type HookDescriptor struct {
	AccountID    string `json:"account_id"`
	ConnectorRef string `json:"connector_ref"`
	RepoURL      string `json:"repo_url"`
	WebhookID    string `json:"webhook_id,omitempty"`
}

type unsubscribeResponse struct {
	Removed bool `json:"removed"`
}

func (c *Client) Unsubscribe(descriptor *HookDescriptor) (bool, error) {
	res := &unsubscribeResponse{}
	_, err := c.Post("/webhooks/unsubscribe", httpclient.SetBody(descriptor), httpclient.SetResult(res))
	if err != nil {
		return false, err
	}

	return res.Removed, nil
}
