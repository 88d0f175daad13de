package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestNextEmployeeID(t *testing.T) {
	tests := []struct {
		name string
		max  *int
		want int
	}{
		{"none assigned", nil, 10000},
		{"after 54321", intPtr(54321), 54322},
		{"after first", intPtr(10000), 10001},
		{"at ceiling", intPtr(99999), 99999},
		{"past ceiling", intPtr(120000), 99999},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextEmployeeID(tt.max))
		})
	}
}

func TestHasCapability(t *testing.T) {
	matrix := map[Capability][]string{
		CapSubmitRequest:    {RoleEmployee, RoleManager, RoleAccountant, RoleAdmin},
		CapViewOwnRequests:  {RoleEmployee, RoleManager, RoleAccountant, RoleAdmin},
		CapReviewRequests:   {RoleManager, RoleAdmin},
		CapDisburseRequests: {RoleAccountant, RoleAdmin},
		CapViewAnalytics:    {RoleManager, RoleAccountant, RoleAdmin},
		CapExportRequests:   {RoleAccountant, RoleAdmin},
		CapViewAuditTrail:   {RoleManager, RoleAccountant, RoleAdmin},
		CapProvisionUsers:   {RoleAdmin},
	}

	for capability, allowed := range matrix {
		for _, role := range Roles {
			want := false
			for _, r := range allowed {
				if r == role {
					want = true
				}
			}
			assert.Equalf(t, want, HasCapability(role, capability), "role=%s capability=%s", role, capability)
		}
		assert.False(t, HasCapability("", capability))
		assert.False(t, HasCapability("intern", capability))
	}
}

func TestCapabilitiesOfReturnsCopy(t *testing.T) {
	caps := CapabilitiesOf(RoleEmployee)
	caps[0] = CapProvisionUsers
	assert.False(t, HasCapability(RoleEmployee, CapProvisionUsers))
}

func TestPriorStatus(t *testing.T) {
	prior, ok := PriorStatus(StatusApproved)
	assert.True(t, ok)
	assert.Equal(t, StatusPending, prior)

	prior, ok = PriorStatus(StatusRejected)
	assert.True(t, ok)
	assert.Equal(t, StatusPending, prior)

	prior, ok = PriorStatus(StatusDisbursed)
	assert.True(t, ok)
	assert.Equal(t, StatusApproved, prior)

	_, ok = PriorStatus(StatusPending)
	assert.False(t, ok)
}

func TestEnums(t *testing.T) {
	assert.True(t, IsValidCategory("Travel"))
	assert.False(t, IsValidCategory("travel"))
	assert.False(t, IsValidCategory(CategoryUncategorized))
	assert.True(t, IsValidRole("accountant"))
	assert.False(t, IsValidRole("owner"))
}
