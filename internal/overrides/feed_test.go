package overrides

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus-schedule/internal/schedule"
)

func TestFeedApply(t *testing.T) {
	store := NewStore()
	f := &Feed{store: store}

	err := f.apply([]byte(`{"route":"Route 1","conditions":{"Friday":{"unavailable":true,"message":"closed"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "closed", store.Availability(time.Friday, "Route 1").Message)

	err = f.apply([]byte(`{"route":"Route 1","conditions":null}`))
	require.NoError(t, err)
	assert.Equal(t, schedule.NormalService(), store.Availability(time.Friday, "Route 1"))
}

func TestFeedApplyRejects(t *testing.T) {
	f := &Feed{store: NewStore()}
	assert.Error(t, f.apply([]byte(`not json`)))
	assert.Error(t, f.apply([]byte(`{"route":"  "}`)))
}

func TestSubjectToken(t *testing.T) {
	assert.Equal(t, "schedule.overrides", subjectToken(" schedule.overrides. "))
	assert.Equal(t, "a_b_c", subjectToken("a b*c"))
	assert.Equal(t, "_", subjectToken(""))
}
