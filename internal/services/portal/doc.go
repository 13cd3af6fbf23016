// Package portal provides the typed HTTP client for the mentor portal
// backend. It covers authentication, mentor profiles, webinar asset
// production (context upload, concept/structure/email generation, media
// and video), background job status, and the approval workflow.
//
// All responses cross the wire as JSON and are validated into typed
// structures at the boundary; malformed or incomplete payloads surface
// as services.ErrValidation rather than zero-valued structs.
package portal
