package model

// Capability names an action a role may perform.
type Capability string

const (
	CapSubmitRequest    Capability = "submit_request"
	CapViewOwnRequests  Capability = "view_own_requests"
	CapReviewRequests   Capability = "review_requests"
	CapDisburseRequests Capability = "disburse_requests"
	CapViewAnalytics    Capability = "view_analytics"
	CapExportRequests   Capability = "export_requests"
	CapViewAuditTrail   Capability = "view_audit_trail"
	CapProvisionUsers   Capability = "provision_users"
)

var roleCapabilities = map[string][]Capability{
	RoleEmployee: {
		CapSubmitRequest, CapViewOwnRequests,
	},
	RoleManager: {
		CapSubmitRequest, CapViewOwnRequests, CapReviewRequests, CapViewAnalytics, CapViewAuditTrail,
	},
	RoleAccountant: {
		CapSubmitRequest, CapViewOwnRequests, CapDisburseRequests, CapViewAnalytics, CapExportRequests, CapViewAuditTrail,
	},
	RoleAdmin: {
		CapSubmitRequest, CapViewOwnRequests, CapReviewRequests, CapDisburseRequests,
		CapViewAnalytics, CapExportRequests, CapViewAuditTrail, CapProvisionUsers,
	},
}

// HasCapability reports whether role may perform action. Unknown roles have none.
func HasCapability(role string, action Capability) bool {
	for _, c := range roleCapabilities[role] {
		if c == action {
			return true
		}
	}
	return false
}

// CapabilitiesOf returns a copy of the capabilities granted to role.
func CapabilitiesOf(role string) []Capability {
	caps := roleCapabilities[role]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}
