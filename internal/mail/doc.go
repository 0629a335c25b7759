// Package mail defines the mailbox retrieval layer: the provider contract
// for listing and fetching messages, the label vocabulary the automation
// uses to mark processed threads, and the tiered source that selects which
// threads a pipeline run will process. The source walks inclusion tiers in
// priority order and groups messages by thread; exclusion labels are
// filtered twice, once in the provider query as an optimization and once
// against each message's actual labels as the authoritative check.
package mail
