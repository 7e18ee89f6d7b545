// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logicapps

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// LogicAppSummary describes a logic app of either backend.
type LogicAppSummary struct {
	Id             string      `json:"id"`
	Name           string      `json:"name"`
	ResourceGroup  string      `json:"resourceGroup"`
	SubscriptionId string      `json:"subscriptionId,omitempty"`
	Location       string      `json:"location"`
	Sku            BackendKind `json:"sku"`
	State          string      `json:"state,omitempty"`
}

type WorkflowSummary struct {
	Name        string `json:"name"`
	State       string `json:"state,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Health      string `json:"health,omitempty"`
	CreatedTime string `json:"createdTime,omitempty"`
	ChangedTime string `json:"changedTime,omitempty"`
}

type RunSummary struct {
	Name             string `json:"name"`
	Status           string `json:"status"`
	StartTime        string `json:"startTime,omitempty"`
	EndTime          string `json:"endTime,omitempty"`
	TriggerName      string `json:"triggerName,omitempty"`
	ClientTrackingId string `json:"clientTrackingId,omitempty"`
	Code             string `json:"code,omitempty"`
}

type ActionSummary struct {
	Name      string          `json:"name"`
	Status    string          `json:"status"`
	Code      string          `json:"code,omitempty"`
	StartTime string          `json:"startTime,omitempty"`
	EndTime   string          `json:"endTime,omitempty"`
	Error     json.RawMessage `json:"error,omitempty"`
}

type TriggerSummary struct {
	Name              string          `json:"name"`
	Type              string          `json:"type,omitempty"`
	State             string          `json:"state,omitempty"`
	LastExecutionTime string          `json:"lastExecutionTime,omitempty"`
	NextExecutionTime string          `json:"nextExecutionTime,omitempty"`
	Recurrence        json.RawMessage `json:"recurrence,omitempty"`
}

type TriggerHistorySummary struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Code      string `json:"code,omitempty"`
	Fired     bool   `json:"fired"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	RunName   string `json:"runName,omitempty"`
}

type ConnectionDetails struct {
	Id            string          `json:"id"`
	Name          string          `json:"name"`
	DisplayName   string          `json:"displayName,omitempty"`
	ApiName       string          `json:"apiName,omitempty"`
	Status        string          `json:"status,omitempty"`
	CreatedTime   string          `json:"createdTime,omitempty"`
	ChangedTime   string          `json:"changedTime,omitempty"`
	ParameterKeys []string        `json:"parameterKeys,omitempty"`
	Error         json.RawMessage `json:"error,omitempty"`
}

// collectionItems returns the items of a management API collection, which is either {"value": [...]} or a bare
// array depending on the endpoint.
func collectionItems(body []byte) []gjson.Result {
	parsed := gjson.ParseBytes(body)
	if parsed.IsArray() {
		return parsed.Array()
	}

	return parsed.Get("value").Array()
}

func rawOrNil(value gjson.Result) json.RawMessage {
	if !value.Exists() || value.Type == gjson.Null {
		return nil
	}

	return json.RawMessage(value.Raw)
}

func toWorkflowSummary(item gjson.Result) WorkflowSummary {
	state := item.Get("properties.flowState").String()
	if state == "" {
		state = item.Get("properties.state").String()
	}

	return WorkflowSummary{
		Name:        workflowShortName(item.Get("name").String()),
		State:       state,
		Kind:        item.Get("kind").String(),
		Health:      item.Get("properties.health.state").String(),
		CreatedTime: item.Get("properties.createdTime").String(),
		ChangedTime: item.Get("properties.changedTime").String(),
	}
}

// workflowShortName strips the "<site>/" prefix the Standard management API puts on workflow names.
func workflowShortName(name string) string {
	if index := strings.LastIndex(name, "/"); index >= 0 {
		return name[index+1:]
	}

	return name
}

func toRunSummary(raw json.RawMessage) RunSummary {
	item := gjson.ParseBytes(raw)

	return RunSummary{
		Name:             item.Get("name").String(),
		Status:           item.Get("properties.status").String(),
		StartTime:        item.Get("properties.startTime").String(),
		EndTime:          item.Get("properties.endTime").String(),
		TriggerName:      item.Get("properties.trigger.name").String(),
		ClientTrackingId: item.Get("properties.correlation.clientTrackingId").String(),
		Code:             item.Get("properties.code").String(),
	}
}

func toActionSummary(raw json.RawMessage) ActionSummary {
	item := gjson.ParseBytes(raw)

	return ActionSummary{
		Name:      item.Get("name").String(),
		Status:    item.Get("properties.status").String(),
		Code:      item.Get("properties.code").String(),
		StartTime: item.Get("properties.startTime").String(),
		EndTime:   item.Get("properties.endTime").String(),
		Error:     rawOrNil(item.Get("properties.error")),
	}
}

func toTriggerSummary(raw json.RawMessage) TriggerSummary {
	item := gjson.ParseBytes(raw)

	return TriggerSummary{
		Name:              item.Get("name").String(),
		Type:              item.Get("type").String(),
		State:             item.Get("properties.state").String(),
		LastExecutionTime: item.Get("properties.lastExecutionTime").String(),
		NextExecutionTime: item.Get("properties.nextExecutionTime").String(),
		Recurrence:        rawOrNil(item.Get("properties.recurrence")),
	}
}

func toTriggerHistorySummary(raw json.RawMessage) TriggerHistorySummary {
	item := gjson.ParseBytes(raw)

	return TriggerHistorySummary{
		Name:      item.Get("name").String(),
		Status:    item.Get("properties.status").String(),
		Code:      item.Get("properties.code").String(),
		Fired:     item.Get("properties.fired").Bool(),
		StartTime: item.Get("properties.startTime").String(),
		EndTime:   item.Get("properties.endTime").String(),
		RunName:   item.Get("properties.run.name").String(),
	}
}

func toConnectionDetails(raw json.RawMessage) ConnectionDetails {
	item := gjson.ParseBytes(raw)

	details := ConnectionDetails{
		Id:          item.Get("id").String(),
		Name:        item.Get("name").String(),
		DisplayName: item.Get("properties.displayName").String(),
		ApiName:     item.Get("properties.api.name").String(),
		Status:      item.Get("properties.statuses.0.status").String(),
		CreatedTime: item.Get("properties.createdTime").String(),
		ChangedTime: item.Get("properties.changedTime").String(),
		Error:       rawOrNil(item.Get("properties.statuses.0.error")),
	}

	item.Get("properties.parameterValues").ForEach(func(key, _ gjson.Result) bool {
		details.ParameterKeys = append(details.ParameterKeys, key.String())
		return true
	})

	return details
}

func mapItems[T any](items []json.RawMessage, shape func(json.RawMessage) T) []T {
	result := make([]T, 0, len(items))
	for _, item := range items {
		result = append(result, shape(item))
	}

	return result
}
