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

// Package connector resolves connector references into the concrete
// repository coordinates registration requests are built from.
package connector

import (
	"fmt"
	"strings"

	configbase "github.com/vigneswara-propelo/harness-core-sub207/pkg/config"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/tool/httpclient"
)

const (
	ConnectionTypeAccount = "account"
	ConnectionTypeRepo    = "repo"
)

type Client struct {
	*httpclient.Client
}

func New() *Client {
	return &Client{
		Client: httpclient.New(
			httpclient.SetHostURL(configbase.ConnectorServiceAddress()),
			httpclient.SetBaseURI("/api/v1"),
			httpclient.SetClientTimeout(configbase.RequestTimeout()),
		),
	}
}

// Details is what a connector reference resolves to.
type Details struct {
	URL            string `json:"url"`
	ConnectionType string `json:"connection_type"`
	ProviderType   string `json:"provider_type"`
}

// RepoURL joins the connector base URL with the repo name for account-level
// connectors; repo-level connectors already point at one repository.
func (d *Details) RepoURL(repoName string) string {
	if d.ConnectionType == ConnectionTypeRepo || repoName == "" {
		return d.URL
	}

	return strings.TrimSuffix(d.URL, "/") + "/" + strings.TrimPrefix(repoName, "/")
}

func (c *Client) Resolve(accountID, orgID, projectID, connectorRef string) (*Details, error) {
	res := &Details{}
	_, err := c.Get(fmt.Sprintf("/connectors/%s", connectorRef),
		httpclient.SetQueryParams(map[string]string{
			"accountIdentifier": accountID,
			"orgIdentifier":     orgID,
			"projectIdentifier": projectID,
		}),
		httpclient.SetResult(res))
	if err != nil {
		return nil, err
	}

	return res, nil
}
