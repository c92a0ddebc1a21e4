// Package coresdk is a typed Go client for the Crewplane authorization
// core. It carries the wire error model shared between the server handlers
// and SDK consumers, plus a small Session-based client used by services
// and the end-to-end tests.
//
// Usage:
//
//	client := coresdk.NewSDKClient("http://localhost:8080")
//	session := client.Session(token)
//	tenantCtx, err := session.TenantContext(ctx)
package coresdk
