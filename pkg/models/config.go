package models

import "time"

// TriggerType identifies the domain event a trigger node reacts to. The
// set of valid values is scoped by the node's module context; the registry
// owns that vocabulary.
type TriggerType string

const (
	TriggerLoadStatusChanged  TriggerType = "load_status_changed"
	TriggerCarrierAssigned    TriggerType = "carrier_assigned"
	TriggerPaymentReceived    TriggerType = "payment_received"
	TriggerDocumentUploaded   TriggerType = "document_uploaded"
	TriggerCustomerCreated    TriggerType = "customer_created"
	TriggerQuoteRequested     TriggerType = "quote_requested"
	TriggerLoadAssigned       TriggerType = "load_assigned"
	TriggerDriverHOSAlert     TriggerType = "driver_hos_alert"
	TriggerMaintenanceDue     TriggerType = "maintenance_due"
	TriggerInvoiceCreated     TriggerType = "invoice_created"
	TriggerShipmentCreated    TriggerType = "shipment_created"
	TriggerShipmentDelivered  TriggerType = "shipment_delivered"
	TriggerInventoryLow       TriggerType = "inventory_low"
	TriggerCarrierRateUpdated TriggerType = "carrier_rate_updated"
	TriggerScheduled          TriggerType = "scheduled"
)

// ActionType identifies the side effect an action node performs. The
// action catalog is module-agnostic.
type ActionType string

const (
	ActionSendEmail           ActionType = "send_email"
	ActionSendSMS             ActionType = "send_sms"
	ActionSendNotification    ActionType = "send_notification"
	ActionCreateAlert         ActionType = "create_alert"
	ActionUpdateStatus        ActionType = "update_status"
	ActionUpdateField         ActionType = "update_field"
	ActionAssignResource      ActionType = "assign_resource"
	ActionCreateTask          ActionType = "create_task"
	ActionCreateFollowUp      ActionType = "create_follow_up"
	ActionScheduleAppointment ActionType = "schedule_appointment"
	ActionWebhook             ActionType = "webhook"
	ActionAPICall             ActionType = "api_call"
	ActionExportData          ActionType = "export_data"
)

// ConditionOperator is a comparison applied to one condition rule.
type ConditionOperator string

const (
	OpEquals              ConditionOperator = "equals"
	OpNotEquals           ConditionOperator = "not_equals"
	OpContains            ConditionOperator = "contains"
	OpNotContains         ConditionOperator = "not_contains"
	OpGreaterThan         ConditionOperator = "greater_than"
	OpLessThan            ConditionOperator = "less_than"
	OpGreaterThanOrEquals ConditionOperator = "greater_than_or_equals"
	OpLessThanOrEquals    ConditionOperator = "less_than_or_equals"
	OpIsEmpty             ConditionOperator = "is_empty"
	OpIsNotEmpty          ConditionOperator = "is_not_empty"
)

// RequiresValue reports whether the operator compares against a value.
// is_empty/is_not_empty inspect only the field.
func (op ConditionOperator) RequiresValue() bool {
	return op != OpIsEmpty && op != OpIsNotEmpty
}

// LogicalOperator combines the rules of one condition node. Applied
// uniformly across all rules; there is no nested grouping.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
)

// DelayType selects how a delay node computes its resume time.
type DelayType string

const (
	DelayFixed         DelayType = "fixed"
	DelayUntilDate     DelayType = "until_date"
	DelayBusinessHours DelayType = "business_hours"
)

// DelayUnit is the unit for fixed and business-hours delays.
type DelayUnit string

const (
	UnitMinutes DelayUnit = "minutes"
	UnitHours   DelayUnit = "hours"
	UnitDays    DelayUnit = "days"
)

// Duration converts an amount in this unit to a time.Duration.
func (u DelayUnit) Duration(amount float64) time.Duration {
	switch u {
	case UnitMinutes:
		return time.Duration(amount * float64(time.Minute))
	case UnitHours:
		return time.Duration(amount * float64(time.Hour))
	case UnitDays:
		return time.Duration(amount * 24 * float64(time.Hour))
	default:
		return 0
	}
}

// TriggerConfig configures a trigger node. Filters hold type-specific
// entries (statusFilter, ratingThreshold, ...); only keys relevant to the
// selected trigger type are present, never null placeholders.
type TriggerConfig struct {
	Type    TriggerType    `json:"trigger_type"             validate:"required"`
	Filters map[string]any `json:"trigger_config,omitempty"`
}

// ConditionRule is one field/operator/value comparison.
type ConditionRule struct {
	Field    string            `json:"field"           validate:"required"`
	Operator ConditionOperator `json:"operator"        validate:"required"`
	Value    any               `json:"value,omitempty"`
}

// ConditionConfig configures a condition node.
type ConditionConfig struct {
	Rules           []ConditionRule `json:"conditions"`
	LogicalOperator LogicalOperator `json:"logical_operator" validate:"required,oneof=AND OR"`
}

// ActionConfig configures an action node. Params is shaped entirely by the
// action type and validated against a per-type sub-schema.
type ActionConfig struct {
	Type   ActionType     `json:"action_type"             validate:"required"`
	Params map[string]any `json:"action_config,omitempty"`
}

// DelayConfig configures a delay node. Exactly the fields for the selected
// delay type are meaningful.
type DelayConfig struct {
	Type      DelayType  `json:"delay_type"           validate:"required,oneof=fixed until_date business_hours"`
	Amount    float64    `json:"delay_amount,omitempty"`
	Unit      DelayUnit  `json:"delay_unit,omitempty"`
	UntilDate *time.Time `json:"until_date,omitempty"`
}

// NodeConfig is the kind-specific payload of a node, modeled as a tagged
// union: exactly one variant is non-nil, and it must match the node's kind.
type NodeConfig struct {
	Trigger   *TriggerConfig   `json:"trigger,omitempty"`
	Condition *ConditionConfig `json:"condition,omitempty"`
	Action    *ActionConfig    `json:"action,omitempty"`
	Delay     *DelayConfig     `json:"delay,omitempty"`
}

// Kind returns the node kind this config belongs to, or "" when no variant
// is populated.
func (c NodeConfig) Kind() NodeKind {
	switch {
	case c.Trigger != nil:
		return KindTrigger
	case c.Condition != nil:
		return KindCondition
	case c.Action != nil:
		return KindAction
	case c.Delay != nil:
		return KindDelay
	default:
		return ""
	}
}
