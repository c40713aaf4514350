// Package btcmarkets is an authenticated REST client for the BTC Markets
// cryptocurrency exchange. Every request is signed with HMAC-SHA512 and
// responses are normalized into typed records and tables with numeric and
// temporal fields coerced per endpoint.
//
// BTC Markets API documentation: https://docs.btcmarkets.net
package btcmarkets
