// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logicapps

import (
	"fmt"
	"strings"
)

// BackendKind identifies the control plane hosting a logic app.
type BackendKind string

const (
	// ConsumptionBackend is the serverless Microsoft.Logic/workflows control plane (one resource, one workflow).
	ConsumptionBackend BackendKind = "consumption"
	// StandardBackend is the App Service hosted control plane (Microsoft.Web/sites with kind workflowapp).
	StandardBackend BackendKind = "standard"
)

// AppRef is the three-part identity of a logic app.
type AppRef struct {
	SubscriptionId string
	ResourceGroup  string
	Name           string
}

// CacheKey returns the case-insensitive cache key for the app.
func (r AppRef) CacheKey() string {
	return cacheKey(r.SubscriptionId, r.ResourceGroup, r.Name)
}

func (r AppRef) String() string {
	return fmt.Sprintf("%s/%s/%s", r.SubscriptionId, r.ResourceGroup, r.Name)
}

func cacheKey(parts ...string) string {
	return strings.ToLower(strings.Join(parts, "/"))
}

// ResolvedApp is an app whose backend kind is known. It is either a ConsumptionApp or a StandardApp.
type ResolvedApp interface {
	Ref() AppRef
	Kind() BackendKind

	resolved()
}

// ConsumptionApp is a logic app backed by Microsoft.Logic/workflows.
type ConsumptionApp struct {
	AppRef
}

func (a ConsumptionApp) Ref() AppRef       { return a.AppRef }
func (a ConsumptionApp) Kind() BackendKind { return ConsumptionBackend }
func (ConsumptionApp) resolved()           {}

// StandardApp is a logic app backed by an App Service site.
type StandardApp struct {
	AppRef
}

func (a StandardApp) Ref() AppRef       { return a.AppRef }
func (a StandardApp) Kind() BackendKind { return StandardBackend }
func (StandardApp) resolved()           {}

func newResolvedApp(ref AppRef, kind BackendKind) ResolvedApp {
	if kind == StandardBackend {
		return StandardApp{AppRef: ref}
	}

	return ConsumptionApp{AppRef: ref}
}

// StandardAccess holds what is needed to call the runtime management API of a Standard app.
type StandardAccess struct {
	Hostname string
	AdminKey string
}

// BatchItemResult is the outcome of one item of a bulk operation.
type BatchItemResult struct {
	Id      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BatchResult summarizes a bulk operation. Results are in input order.
type BatchResult struct {
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Results   []BatchItemResult `json:"results"`
}

func newBatchResult(results []BatchItemResult) *BatchResult {
	batch := &BatchResult{
		Total:   len(results),
		Results: results,
	}

	for _, result := range results {
		if result.Success {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
	}

	return batch
}
