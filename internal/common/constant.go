// Package common contains shared constants and sentinel errors used across
// budgetkeeper components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// UnknownCategoryName is reported for categories that no longer exist.
const UnknownCategoryName = "Unknown"
