// Package domain contains the core business entities and value objects of
// the email automation system: operators, per-user task state, and the
// decision vocabulary the pipeline and its audit log share. It is
// independent of any specific infrastructure or delivery mechanism.
package domain
