package logic

import (
	"testing"

	"github.com/blues/dfs/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecideOnLockedMilestone(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(t, db)
	milestoneLogic := NewMilestoneLogic(db, ledger, nil)

	campaign := createTestCampaign(t, db, 10000, "owner-1")
	milestone := createTestMilestone(t, db, campaign.Id, 5000)

	// 未提交凭证不能审批
	err := milestoneLogic.Decide(milestone.Id, "approved")
	assert.ErrorIs(t, err, ErrInvalidState)

	current, err := milestoneLogic.GetMilestone(milestone.Id)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneStatusLocked, current.Status)

	snapshot, err := ledger.Snapshot(campaign.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), snapshot.ReleasedTotal)
}

func TestSubmitProofAndApprove(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(t, db)
	broadcaster := &stubBroadcaster{}
	milestoneLogic := NewMilestoneLogic(db, ledger, broadcaster)

	campaign := createTestCampaign(t, db, 10000, "owner-1")
	milestone := createTestMilestone(t, db, campaign.Id, 5000)
	applyDonation(t, ledger, campaign.Id, 10000)

	require.NoError(t, milestoneLogic.SubmitProof(milestone.Id, "owner-1", "https://example.com/proof.jpg", "图书采购发票"))

	current, err := milestoneLogic.GetMilestone(milestone.Id)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneStatusPendingApproval, current.Status)
	assert.Equal(t, "https://example.com/proof.jpg", current.ProofURL)
	assert.NotNil(t, current.SubmittedAt)

	require.NoError(t, milestoneLogic.Decide(milestone.Id, "approved"))

	current, err = milestoneLogic.GetMilestone(milestone.Id)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneStatusApproved, current.Status)
	assert.NotNil(t, current.DecidedAt)

	snapshot, err := ledger.Snapshot(campaign.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), snapshot.ReleasedTotal)
	assert.Equal(t, int64(5000), snapshot.AvailableTotal)

	events := broadcaster.Events()
	require.Len(t, events, 2)
	assert.Equal(t, model.FundEventMilestoneUpdated, events[0].EventType)
	assert.Equal(t, string(model.MilestoneStatusPendingApproval), events[0].Payload["status"])
	assert.Equal(t, string(model.MilestoneStatusApproved), events[1].Payload["status"])
	assert.Equal(t, int64(5000), events[1].Payload["released_total"])
}

func TestApproveBeforeDonationsCoverAmount(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(t, db)
	milestoneLogic := NewMilestoneLogic(db, ledger, nil)

	campaign := createTestCampaign(t, db, 10000, "owner-1")
	milestone := createTestMilestone(t, db, campaign.Id, 5000)
	applyDonation(t, ledger, campaign.Id, 3000)

	require.NoError(t, milestoneLogic.SubmitProof(milestone.Id, "owner-1", "https://example.com/proof.jpg", ""))

	// 已筹3000不足以解锁5000，审批整体回滚
	err := milestoneLogic.Decide(milestone.Id, "approved")
	assert.ErrorIs(t, err, ErrLedgerIntegrity)

	current, err := milestoneLogic.GetMilestone(milestone.Id)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneStatusPendingApproval, current.Status)

	snapshot, err := ledger.Snapshot(campaign.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), snapshot.RaisedTotal)
	assert.Equal(t, int64(0), snapshot.ReleasedTotal)
}

func TestRejectAndResubmit(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(t, db)
	milestoneLogic := NewMilestoneLogic(db, ledger, nil)

	campaign := createTestCampaign(t, db, 10000, "owner-1")
	milestone := createTestMilestone(t, db, campaign.Id, 5000)
	applyDonation(t, ledger, campaign.Id, 10000)

	require.NoError(t, milestoneLogic.SubmitProof(milestone.Id, "owner-1", "https://example.com/v1.jpg", ""))
	require.NoError(t, milestoneLogic.Decide(milestone.Id, "rejected"))

	current, err := milestoneLogic.GetMilestone(milestone.Id)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneStatusRejected, current.Status)

	// 驳回不解锁资金
	snapshot, err := ledger.Snapshot(campaign.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), snapshot.ReleasedTotal)

	// 补充凭证后重新提交
	require.NoError(t, milestoneLogic.SubmitProof(milestone.Id, "owner-1", "https://example.com/v2.jpg", "补充发票"))

	current, err = milestoneLogic.GetMilestone(milestone.Id)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneStatusPendingApproval, current.Status)
	assert.Equal(t, "https://example.com/v2.jpg", current.ProofURL)
}

func TestDoubleSubmitProof(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(t, db)
	milestoneLogic := NewMilestoneLogic(db, ledger, nil)

	campaign := createTestCampaign(t, db, 10000, "owner-1")
	milestone := createTestMilestone(t, db, campaign.Id, 5000)

	require.NoError(t, milestoneLogic.SubmitProof(milestone.Id, "owner-1", "https://example.com/proof.jpg", ""))

	err := milestoneLogic.SubmitProof(milestone.Id, "owner-1", "https://example.com/again.jpg", "")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestApprovedIsTerminal(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(t, db)
	milestoneLogic := NewMilestoneLogic(db, ledger, nil)

	campaign := createTestCampaign(t, db, 10000, "owner-1")
	milestone := createTestMilestone(t, db, campaign.Id, 5000)
	applyDonation(t, ledger, campaign.Id, 10000)

	require.NoError(t, milestoneLogic.SubmitProof(milestone.Id, "owner-1", "https://example.com/proof.jpg", ""))
	require.NoError(t, milestoneLogic.Decide(milestone.Id, "approved"))

	// 已通过的里程碑不能重新提交，也不能再次审批（资金不会重复解锁）
	err := milestoneLogic.SubmitProof(milestone.Id, "owner-1", "https://example.com/again.jpg", "")
	assert.ErrorIs(t, err, ErrInvalidState)

	err = milestoneLogic.Decide(milestone.Id, "approved")
	assert.ErrorIs(t, err, ErrInvalidState)

	snapshot, err := ledger.Snapshot(campaign.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), snapshot.ReleasedTotal)
}

func TestSubmitProofNotOwner(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(t, db)
	milestoneLogic := NewMilestoneLogic(db, ledger, nil)

	campaign := createTestCampaign(t, db, 10000, "owner-1")
	milestone := createTestMilestone(t, db, campaign.Id, 5000)

	err := milestoneLogic.SubmitProof(milestone.Id, "someone-else", "https://example.com/proof.jpg", "")
	assert.ErrorIs(t, err, ErrNotOwner)

	current, err := milestoneLogic.GetMilestone(milestone.Id)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneStatusLocked, current.Status)
}

func TestDecideInvalidOutcome(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(t, db)
	milestoneLogic := NewMilestoneLogic(db, ledger, nil)

	campaign := createTestCampaign(t, db, 10000, "owner-1")
	milestone := createTestMilestone(t, db, campaign.Id, 5000)

	require.NoError(t, milestoneLogic.SubmitProof(milestone.Id, "owner-1", "https://example.com/proof.jpg", ""))

	err := milestoneLogic.Decide(milestone.Id, "maybe")
	assert.ErrorIs(t, err, ErrValidation)
}
