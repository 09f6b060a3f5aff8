package metrics

import (
	"testing"

	"github.com/clinichq/admin-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestIsActualBookingRequiresLead(t *testing.T) {
	// A booked row without the lead flag is not a conversion.
	assert.False(t, IsActualBooking(&domain.Lead{Booked: true, IsLead: false}))
	assert.True(t, IsActualBooking(&domain.Lead{Booked: true, IsLead: true}))
	assert.False(t, IsActualBooking(&domain.Lead{Booked: false, IsLead: true}))
}

func TestIsActualLead(t *testing.T) {
	assert.True(t, IsActualLead(&domain.Lead{IsLead: true}))
	assert.False(t, IsActualLead(&domain.Lead{IsLead: false, Booked: true, Engaged: true}))
}

func TestIsEngagedConversationIndependent(t *testing.T) {
	// Engaged must be unaffected by lead/booked in all four combinations.
	for _, isLead := range []bool{false, true} {
		for _, booked := range []bool{false, true} {
			l := &domain.Lead{IsLead: isLead, Booked: booked, Engaged: true}
			assert.True(t, IsEngagedConversation(l),
				"lead=%v booked=%v", isLead, booked)
		}
	}
	assert.False(t, IsEngagedConversation(&domain.Lead{IsLead: true, Booked: true}))
}
