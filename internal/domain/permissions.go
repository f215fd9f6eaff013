package domain

import (
	"encoding/json"
	"fmt"
)

// Module is a resource area guarded by the capability table
type Module string

const (
	ModuleQuotation Module = "quotation"
	ModuleProduct   Module = "product"
	ModuleCustomer  Module = "customer"
	ModuleCompany   Module = "company"
	ModuleUser      Module = "user"
)

// Action is an operation on a module
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

var knownModules = map[Module]struct{}{
	ModuleQuotation: {},
	ModuleProduct:   {},
	ModuleCustomer:  {},
	ModuleCompany:   {},
	ModuleUser:      {},
}

var knownActions = map[Action]struct{}{
	ActionCreate: {},
	ActionRead:   {},
	ActionUpdate: {},
	ActionDelete: {},
}

// PermissionMatrix is the typed capability table: module x action -> allowed.
// A missing entry means denied.
type PermissionMatrix map[Module]map[Action]bool

// Allows reports whether the matrix grants action on module
func (m PermissionMatrix) Allows(module Module, action Action) bool {
	actions, ok := m[module]
	if !ok {
		return false
	}
	return actions[action]
}

// Merge returns a new matrix holding m with overrides applied per
// module/action. An explicit false in overrides revokes a granted action.
func (m PermissionMatrix) Merge(overrides PermissionMatrix) PermissionMatrix {
	merged := make(PermissionMatrix, len(m)+len(overrides))
	for _, src := range []PermissionMatrix{m, overrides} {
		for module, actions := range src {
			dst, ok := merged[module]
			if !ok {
				dst = make(map[Action]bool, len(actions))
				merged[module] = dst
			}
			for action, allowed := range actions {
				dst[action] = allowed
			}
		}
	}
	return merged
}

// ParsePermissionMatrix converts a free-form table into a PermissionMatrix,
// rejecting unknown modules and actions
func ParsePermissionMatrix(raw map[string]map[string]bool) (PermissionMatrix, error) {
	matrix := make(PermissionMatrix, len(raw))
	for moduleName, actions := range raw {
		module := Module(moduleName)
		if _, ok := knownModules[module]; !ok {
			return nil, fmt.Errorf("unknown permission module %q", moduleName)
		}
		typed := make(map[Action]bool, len(actions))
		for actionName, allowed := range actions {
			action := Action(actionName)
			if _, ok := knownActions[action]; !ok {
				return nil, fmt.Errorf("unknown permission action %q on module %q", actionName, moduleName)
			}
			typed[action] = allowed
		}
		matrix[module] = typed
	}
	return matrix, nil
}

// DecodePermissionMatrix parses the JSON form stored on user accounts
func DecodePermissionMatrix(data []byte) (PermissionMatrix, error) {
	if len(data) == 0 || string(data) == "null" {
		return PermissionMatrix{}, nil
	}
	var raw map[string]map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode permissions: %w", err)
	}
	return ParsePermissionMatrix(raw)
}
