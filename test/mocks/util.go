// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package mocks

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// CreateHttpResponseWithBody returns a JSON response for request. body is marshalled unless it already is a string
// or byte slice.
func CreateHttpResponseWithBody(request *http.Request, statusCode int, body any) (*http.Response, error) {
	var data []byte
	switch value := body.(type) {
	case string:
		data = []byte(value)
	case []byte:
		data = value
	default:
		marshalled, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		data = marshalled
	}

	return &http.Response{
		Request:    request,
		StatusCode: statusCode,
		Header: http.Header{
			"Content-Type": []string{"application/json"},
		},
		Body: io.NopCloser(bytes.NewBuffer(data)),
	}, nil
}

func CreateEmptyHttpResponse(request *http.Request, statusCode int) (*http.Response, error) {
	return &http.Response{
		Request:    request,
		StatusCode: statusCode,
		Header:     http.Header{},
		Body:       http.NoBody,
	}, nil
}

// CreateArmErrorResponse returns an ARM style error payload with the given code.
func CreateArmErrorResponse(request *http.Request, statusCode int, code string) (*http.Response, error) {
	return CreateHttpResponseWithBody(request, statusCode, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": code + " returned by mock",
		},
	})
}
