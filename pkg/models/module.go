// Package models defines the core domain models for TMS workflow automation.
package models

// ModuleContext scopes a node or workflow to one business domain. The
// trigger vocabulary differs per module; the action catalog is shared.
type ModuleContext string

const (
	ModuleBroker  ModuleContext = "broker"
	ModuleCarrier ModuleContext = "carrier"
	ModuleShipper ModuleContext = "shipper"
)

// AllModules lists every valid module context in a stable order.
func AllModules() []ModuleContext {
	return []ModuleContext{ModuleBroker, ModuleCarrier, ModuleShipper}
}

// IsValid reports whether the module context is one of the known domains.
func (m ModuleContext) IsValid() bool {
	switch m {
	case ModuleBroker, ModuleCarrier, ModuleShipper:
		return true
	default:
		return false
	}
}
