package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superapp/marketplace-approvals/pkg/model"
)

func TestTransition_LegalMoves(t *testing.T) {
	cases := []struct {
		entity   model.EntityType
		from     string
		decision Decision
		want     string
	}{
		{model.EntityProduct, "PENDING_APPROVAL", DecisionApprove, "ACTIVE"},
		{model.EntityProduct, "PENDING_APPROVAL", DecisionReject, "REJECTED"},
		{model.EntityPartner, "PENDING", DecisionApprove, "ACTIVE"},
		{model.EntityPartner, "PENDING", DecisionReject, "SUSPENDED"},
		{model.EntityAsset, "PENDING_APPROVAL", DecisionApprove, "ACTIVE"},
		{model.EntityAsset, "PENDING_APPROVAL", DecisionReject, "REJECTED"},
		{model.EntityChangeRequest, "PENDING", DecisionApprove, "APPROVED"},
		{model.EntityChangeRequest, "PENDING", DecisionReject, "REJECTED"},
	}

	for _, tc := range cases {
		got, err := Transition(tc.entity, tc.from, tc.decision, "not good enough")
		require.NoError(t, err, "%s %s from %s", tc.entity, tc.decision, tc.from)
		assert.Equal(t, tc.want, got)
	}
}

func TestTransition_WrongFromStatus(t *testing.T) {
	cases := []struct {
		entity  model.EntityType
		current string
	}{
		{model.EntityProduct, "ACTIVE"},
		{model.EntityProduct, "DRAFT"},
		{model.EntityProduct, "REJECTED"},
		{model.EntityProduct, "SUSPENDED"},
		{model.EntityPartner, "ACTIVE"},
		{model.EntityPartner, "SUSPENDED"},
		{model.EntityAsset, "ACTIVE"},
		{model.EntityAsset, "REJECTED"},
		{model.EntityChangeRequest, "APPROVED"},
		{model.EntityChangeRequest, "REJECTED"},
	}

	for _, tc := range cases {
		_, err := Transition(tc.entity, tc.current, DecisionApprove, "")
		assert.ErrorIs(t, err, ErrInvalidTransition, "%s from %s", tc.entity, tc.current)
	}
}

func TestTransition_RejectRequiresReason(t *testing.T) {
	for _, entity := range []model.EntityType{
		model.EntityProduct, model.EntityPartner, model.EntityAsset, model.EntityChangeRequest,
	} {
		_, err := Transition(entity, "PENDING_APPROVAL", DecisionReject, "")
		assert.ErrorIs(t, err, ErrMissingReason, "entity %s", entity)

		_, err = Transition(entity, "PENDING_APPROVAL", DecisionReject, "   ")
		assert.ErrorIs(t, err, ErrMissingReason, "whitespace reason, entity %s", entity)
	}
}

func TestTransition_ReasonCheckedBeforeStatus(t *testing.T) {
	// A reject with no reason fails with MissingReason even when the status
	// is also wrong; validation never reaches the table.
	_, err := Transition(model.EntityProduct, "ACTIVE", DecisionReject, "")
	assert.ErrorIs(t, err, ErrMissingReason)
}

func TestTransition_UnknownEntityType(t *testing.T) {
	_, err := Transition(model.EntityType("coupon"), "PENDING", DecisionApprove, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestParseDecision(t *testing.T) {
	d, err := ParseDecision("Approve")
	require.NoError(t, err)
	assert.Equal(t, DecisionApprove, d)

	d, err = ParseDecision(" rejected ")
	require.NoError(t, err)
	assert.Equal(t, DecisionReject, d)

	_, err = ParseDecision("defer")
	assert.Error(t, err)
}
