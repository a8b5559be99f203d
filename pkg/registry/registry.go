// Package registry is the single source of truth for node type metadata:
// per-kind default configuration, display names, and the trigger/action
// vocabulary valid for each module context.
package registry

import (
	"log/slog"
	"slices"

	"github.com/loadsmith/cargoflow/pkg/models"
)

// KindMeta is the presentation metadata for a node kind.
type KindMeta struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type Registry struct {
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger.With("module", "registry")}
}

var triggerVocabulary = map[models.ModuleContext][]models.TriggerType{
	models.ModuleBroker: {
		models.TriggerLoadStatusChanged,
		models.TriggerCarrierAssigned,
		models.TriggerPaymentReceived,
		models.TriggerDocumentUploaded,
		models.TriggerCustomerCreated,
		models.TriggerQuoteRequested,
		models.TriggerScheduled,
	},
	models.ModuleCarrier: {
		models.TriggerLoadStatusChanged,
		models.TriggerLoadAssigned,
		models.TriggerDocumentUploaded,
		models.TriggerDriverHOSAlert,
		models.TriggerMaintenanceDue,
		models.TriggerInvoiceCreated,
		models.TriggerScheduled,
	},
	models.ModuleShipper: {
		models.TriggerShipmentCreated,
		models.TriggerShipmentDelivered,
		models.TriggerInventoryLow,
		models.TriggerCarrierRateUpdated,
		models.TriggerDocumentUploaded,
		models.TriggerPaymentReceived,
		models.TriggerScheduled,
	},
}

// The action catalog is module-agnostic: broker, carrier and shipper share it.
var actionVocabulary = []models.ActionType{
	models.ActionSendEmail,
	models.ActionSendSMS,
	models.ActionSendNotification,
	models.ActionCreateAlert,
	models.ActionUpdateStatus,
	models.ActionUpdateField,
	models.ActionAssignResource,
	models.ActionCreateTask,
	models.ActionCreateFollowUp,
	models.ActionScheduleAppointment,
	models.ActionWebhook,
	models.ActionAPICall,
	models.ActionExportData,
}

var displayNames = map[string]string{
	string(models.TriggerLoadStatusChanged):  "Load Status Changed",
	string(models.TriggerCarrierAssigned):    "Carrier Assigned",
	string(models.TriggerPaymentReceived):    "Payment Received",
	string(models.TriggerDocumentUploaded):   "Document Uploaded",
	string(models.TriggerCustomerCreated):    "Customer Created",
	string(models.TriggerQuoteRequested):     "Quote Requested",
	string(models.TriggerLoadAssigned):       "Load Assigned",
	string(models.TriggerDriverHOSAlert):     "Driver HOS Alert",
	string(models.TriggerMaintenanceDue):     "Maintenance Due",
	string(models.TriggerInvoiceCreated):     "Invoice Created",
	string(models.TriggerShipmentCreated):    "Shipment Created",
	string(models.TriggerShipmentDelivered):  "Shipment Delivered",
	string(models.TriggerInventoryLow):       "Inventory Low",
	string(models.TriggerCarrierRateUpdated): "Carrier Rate Updated",
	string(models.TriggerScheduled):          "Scheduled",

	string(models.ActionSendEmail):           "Send Email",
	string(models.ActionSendSMS):             "Send SMS",
	string(models.ActionSendNotification):    "Send Notification",
	string(models.ActionCreateAlert):         "Create Alert",
	string(models.ActionUpdateStatus):        "Update Status",
	string(models.ActionUpdateField):         "Update Field",
	string(models.ActionAssignResource):      "Assign Resource",
	string(models.ActionCreateTask):          "Create Task",
	string(models.ActionCreateFollowUp):      "Create Follow-Up",
	string(models.ActionScheduleAppointment): "Schedule Appointment",
	string(models.ActionWebhook):             "Webhook",
	string(models.ActionAPICall):             "API Call",
	string(models.ActionExportData):          "Export Data",
}

var kindMeta = map[models.NodeKind]KindMeta{
	models.KindTrigger:   {Label: "Trigger", Color: "#10b981", Icon: "zap"},
	models.KindCondition: {Label: "Condition", Color: "#f59e0b", Icon: "git-branch"},
	models.KindAction:    {Label: "Action", Color: "#3b82f6", Icon: "play"},
	models.KindDelay:     {Label: "Delay", Color: "#8b5cf6", Icon: "clock"},
}

// TriggerTypes returns the trigger vocabulary valid for the module context.
func (r *Registry) TriggerTypes(module models.ModuleContext) []models.TriggerType {
	return slices.Clone(triggerVocabulary[module])
}

// ActionTypes returns the shared action catalog.
func (r *Registry) ActionTypes() []models.ActionType {
	return slices.Clone(actionVocabulary)
}

// IsValidTriggerType reports whether t belongs to the module's vocabulary.
func (r *Registry) IsValidTriggerType(module models.ModuleContext, t models.TriggerType) bool {
	return slices.Contains(triggerVocabulary[module], t)
}

// IsValidActionType reports whether t belongs to the action catalog.
func (r *Registry) IsValidActionType(t models.ActionType) bool {
	return slices.Contains(actionVocabulary, t)
}

// DisplayName resolves a trigger or action type to its label. Unknown
// values fall back to the raw identifier so server-introduced types render
// instead of failing.
func (r *Registry) DisplayName(rawType string) string {
	if name, ok := displayNames[rawType]; ok {
		return name
	}

	return rawType
}

// KindMeta returns display metadata for a node kind.
func (r *Registry) KindMeta(kind models.NodeKind) KindMeta {
	return kindMeta[kind]
}

// DefaultConfig returns a minimally valid configuration for a new node of
// the given kind. The shape satisfies the kind's schema but is semantically
// incomplete, so the node starts with IsConfigured false.
func (r *Registry) DefaultConfig(kind models.NodeKind, module models.ModuleContext) models.NodeConfig {
	switch kind {
	case models.KindTrigger:
		types := triggerVocabulary[module]
		first := models.TriggerType("")

		if len(types) > 0 {
			first = types[0]
		}

		return models.NodeConfig{Trigger: &models.TriggerConfig{
			Type:    first,
			Filters: map[string]any{},
		}}
	case models.KindCondition:
		return models.NodeConfig{Condition: &models.ConditionConfig{
			Rules:           []models.ConditionRule{},
			LogicalOperator: models.LogicalAnd,
		}}
	case models.KindAction:
		return models.NodeConfig{Action: &models.ActionConfig{
			Type:   models.ActionSendNotification,
			Params: map[string]any{},
		}}
	case models.KindDelay:
		return models.NodeConfig{Delay: &models.DelayConfig{
			Type:   models.DelayFixed,
			Amount: 1,
			Unit:   models.UnitHours,
		}}
	default:
		return models.NodeConfig{}
	}
}
