package mail

import (
	"fmt"
	"strings"
)

// Gmail system labels.
const (
	LabelInbox     = "INBOX"
	LabelUnread    = "UNREAD"
	LabelImportant = "IMPORTANT"
)

// Automation marker labels. A thread carrying any of these has already been
// through the pipeline and must not be picked up again.
const (
	LabelArchive          = "Q_Archive"
	LabelNoResponseNeeded = "Q_No Response Needed"
	LabelResponseNeeded   = "Q_Response Needed"
	LabelDecline          = "Q_Decline"
	LabelScheduleMeeting  = "Q_Schedule Meeting"
	LabelDraft            = "Q_Draft"
)

// DefaultTiers is the retrieval priority order: unread mail that is also
// important first, then unread inbox mail, then anything important, then
// the rest of the inbox.
func DefaultTiers() [][]string {
	return [][]string{
		{LabelUnread, LabelImportant},
		{LabelUnread, LabelInbox},
		{LabelImportant},
		{LabelInbox},
	}
}

// DefaultExclusions lists the marker labels that disqualify a thread from
// retrieval.
func DefaultExclusions() []string {
	return []string{
		LabelArchive,
		LabelNoResponseNeeded,
		LabelResponseNeeded,
		LabelDecline,
		LabelScheduleMeeting,
		LabelDraft,
	}
}

// ExclusionQuery renders labels as a provider search query that filters
// them out server-side. The query is an optimization only; callers still
// check actual message labels.
func ExclusionQuery(labels []string) string {
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		if strings.ContainsRune(label, ' ') {
			parts = append(parts, fmt.Sprintf("-label:%q", label))
		} else {
			parts = append(parts, "-label:"+label)
		}
	}
	return strings.Join(parts, " ")
}
