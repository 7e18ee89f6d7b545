// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azsdk

import (
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

const userAgentHeaderName = "User-Agent"

type userAgentPolicy struct {
	userAgent string
}

// NewUserAgentPolicy creates a policy that appends userAgent to the User-Agent header of each request.
func NewUserAgentPolicy(userAgent string) policy.Policy {
	return &userAgentPolicy{userAgent: userAgent}
}

func (p *userAgentPolicy) Do(req *policy.Request) (*http.Response, error) {
	if strings.TrimSpace(p.userAgent) != "" {
		rawRequest := req.Raw()
		existing := rawRequest.Header.Get(userAgentHeaderName)
		if existing == "" {
			rawRequest.Header.Set(userAgentHeaderName, p.userAgent)
		} else {
			rawRequest.Header.Set(userAgentHeaderName, existing+" "+p.userAgent)
		}
	}

	return req.Next()
}
