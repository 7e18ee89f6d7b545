// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logicapps

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

// ResourceNotFoundError is returned when neither the Consumption nor the Standard backend hosts the named app.
type ResourceNotFoundError struct {
	AppName       string
	ResourceGroup string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf(
		"logic app '%s' was not found in resource group '%s' as either a Consumption workflow or a Standard app",
		e.AppName,
		e.ResourceGroup,
	)
}

// InvalidParameterError is returned when a parameter required by the resolved backend is missing or malformed.
type InvalidParameterError struct {
	Parameter string
	Reason    string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter '%s': %s", e.Parameter, e.Reason)
}

const workflowNameRequiredReason = "Standard logic apps host multiple workflows; workflowName is required"

func workflowNameRequired() error {
	return &InvalidParameterError{Parameter: "workflowName", Reason: workflowNameRequiredReason}
}

// IsNotFound reports whether err says the named resource itself does not exist: a ResourceNotFound or NotFound error
// code, or an HTTP 404 without a code. A missing resource group or subscription is not a not-found of the app
// and is surfaced as is. Only this class of failure lets the resolver move on to the next backend probe.
func IsNotFound(err error) bool {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return false
	}

	switch {
	case strings.EqualFold(respErr.ErrorCode, "ResourceNotFound"), strings.EqualFold(respErr.ErrorCode, "NotFound"):
		return true
	case respErr.ErrorCode == "":
		return respErr.StatusCode == http.StatusNotFound
	default:
		return false
	}
}
