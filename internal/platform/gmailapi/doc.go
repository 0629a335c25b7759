// Package gmailapi binds the mail package's provider, retriever, labeler,
// and drafter contracts to the Gmail API. The service authenticates with
// the operator's OAuth refresh token; the consent flow that produced the
// token happens outside this process.
package gmailapi
