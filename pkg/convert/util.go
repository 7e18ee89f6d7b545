// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package convert

// Converts a pointer to a value type
// If the ptr is nil returns default value, otherwise the value of value of the pointer
func ToValueWithDefault[T any](ptr *T, defaultValue T) T {
	if ptr == nil {
		return defaultValue
	}

	if str, ok := any(ptr).(*string); ok && *str == "" {
		return defaultValue
	}

	return *ptr
}

// ToStringMap dereferences the values of an SDK string map, dropping nil entries.
func ToStringMap(values map[string]*string) map[string]string {
	result := make(map[string]string, len(values))
	for key, value := range values {
		if value != nil {
			result[key] = *value
		}
	}

	return result
}
