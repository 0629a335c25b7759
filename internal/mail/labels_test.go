package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExclusionQuery(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ExclusionQuery(nil))
	assert.Equal(t, "-label:Q_Archive", ExclusionQuery([]string{LabelArchive}))
	assert.Equal(t, `-label:"Q_No Response Needed"`,
		ExclusionQuery([]string{LabelNoResponseNeeded}),
		"label names containing spaces must be quoted")
	assert.Equal(t, `-label:Q_Archive -label:"Q_Schedule Meeting" -label:Q_Draft`,
		ExclusionQuery([]string{LabelArchive, LabelScheduleMeeting, LabelDraft}))
}

func TestDefaultTiersPriorityOrder(t *testing.T) {
	t.Parallel()

	tiers := DefaultTiers()
	assert.Equal(t, [][]string{
		{LabelUnread, LabelImportant},
		{LabelUnread, LabelInbox},
		{LabelImportant},
		{LabelInbox},
	}, tiers)
}

func TestDefaultExclusionsCoverAllMarkerLabels(t *testing.T) {
	t.Parallel()

	assert.ElementsMatch(t, []string{
		LabelArchive,
		LabelNoResponseNeeded,
		LabelResponseNeeded,
		LabelDecline,
		LabelScheduleMeeting,
		LabelDraft,
	}, DefaultExclusions())
}
