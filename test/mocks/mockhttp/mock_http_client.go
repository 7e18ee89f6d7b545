// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package mockhttp

import (
	"fmt"
	"net/http"
	"sync"
)

// MockHttpClient is a policy.Transporter answering requests from registered expressions. The first expression
// whose predicate matches a request produces the response. Safe for concurrent use.
type MockHttpClient struct {
	mu          sync.Mutex
	expressions []*HttpExpression
	requests    []*http.Request
}

type HttpExpression struct {
	http        *MockHttpClient
	predicateFn RequestPredicate
	response    *http.Response
	responseFn  RespondFn
	error       error
	calls       int
}

type RequestPredicate func(request *http.Request) bool
type RespondFn func(request *http.Request) (*http.Response, error)

func NewMockHttpUtil() *MockHttpClient {
	return &MockHttpClient{
		expressions: []*HttpExpression{},
	}
}

func (c *MockHttpClient) Do(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)

	var match *HttpExpression
	for _, expr := range c.expressions {
		if expr.predicateFn(req) {
			match = expr
			break
		}
	}

	if match != nil {
		match.calls++
	}
	c.mu.Unlock()

	if match == nil {
		return nil, fmt.Errorf("no mock found for request: '%s %s'", req.Method, req.URL.String())
	}

	if match.responseFn != nil {
		return match.responseFn(req)
	}

	if match.response != nil {
		match.response.Request = req
	}

	return match.response, match.error
}

func (c *MockHttpClient) When(predicate RequestPredicate) *HttpExpression {
	expr := &HttpExpression{
		http:        c,
		predicateFn: predicate,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.expressions = append(c.expressions, expr)
	return expr
}

// Requests returns every request received so far, matched or not.
func (c *MockHttpClient) Requests() []*http.Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	requests := make([]*http.Request, len(c.requests))
	copy(requests, c.requests)
	return requests
}

func (e *HttpExpression) Respond(response *http.Response) *HttpExpression {
	e.response = response
	return e
}

func (e *HttpExpression) RespondFn(responseFn RespondFn) *HttpExpression {
	e.responseFn = responseFn
	return e
}

func (e *HttpExpression) SetError(err error) *HttpExpression {
	e.error = err
	return e
}

// CallCount returns how many requests this expression answered.
func (e *HttpExpression) CallCount() int {
	e.http.mu.Lock()
	defer e.http.mu.Unlock()

	return e.calls
}
