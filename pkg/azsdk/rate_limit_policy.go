// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azsdk

import (
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"golang.org/x/time/rate"
)

type rateLimitPolicy struct {
	limiter *rate.Limiter
}

// NewRateLimitPolicy creates a policy admitting at most requestsPerSecond requests per second across every client
// sharing it, with bursts of up to burst requests. Waiting honours the request context.
func NewRateLimitPolicy(requestsPerSecond float64, burst int) policy.Policy {
	if burst < 1 {
		burst = 1
	}

	return &rateLimitPolicy{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

func (p *rateLimitPolicy) Do(req *policy.Request) (*http.Response, error) {
	if err := p.limiter.Wait(req.Raw().Context()); err != nil {
		return nil, fmt.Errorf("waiting for request rate limit: %w", err)
	}

	return req.Next()
}
