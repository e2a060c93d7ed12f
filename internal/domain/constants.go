package domain

const (
	RoleAdmin      = "ADMIN"
	RoleTechnician = "TECHNICIAN"
)

// Notification types
const (
	NotifEquipmentFailure   = "equipment_failure"
	NotifMaintenanceDue     = "maintenance_due"
	NotifServiceOrderUpdate = "service_order_update"
	NotifSystemAlert        = "system_alert"
)

var NotificationTypes = []string{
	NotifEquipmentFailure,
	NotifMaintenanceDue,
	NotifServiceOrderUpdate,
	NotifSystemAlert,
}

func ValidNotificationType(t string) bool {
	for _, nt := range NotificationTypes {
		if t == nt {
			return true
		}
	}
	return false
}

const (
	RelatedTypeEquipment    = "equipment"
	RelatedTypeServiceOrder = "service_order"
)

const (
	EquipmentOperational = "OPERATIONAL"
	EquipmentMaintenance = "MAINTENANCE"
	EquipmentFailure     = "FAILURE"
	EquipmentInactive    = "INACTIVE"
)

const (
	OrderStatusOpen       = "OPEN"
	OrderStatusInProgress = "IN_PROGRESS"
	OrderStatusCompleted  = "COMPLETED"
	OrderStatusCancelled  = "CANCELLED"
)

// Scheduler job names
const (
	JobEquipmentFailureScan = "equipment-failure-scan"
	JobMaintenanceDueScan   = "maintenance-due-scan"
	JobServiceOrderScan     = "service-order-scan"
	JobRetentionSweep       = "retention-sweep"
)

// Manual check kinds accepted by the operator trigger endpoint.
const (
	CheckEquipment     = "equipment"
	CheckMaintenance   = "maintenance"
	CheckServiceOrders = "service-orders"
	CheckAll           = "all"
)
