// Package core provides the business logic for vendor registration and the
// vendor data grid.
//
// This package contains all domain logic independent of any UI or transport
// layer. It can be used by web handlers or tests without modification.
//
// # Flow
//
//  1. [Service.Register] validates the registration form, parses the uploaded
//     spreadsheet under the [UploadLimiter] and returns an encoded payload.
//  2. [Service.Open] decodes the payload into a vendor Subject and a data grid
//     and stores both in a [Session].
//  3. [Session] methods page, select and edit. Every method returns a
//     [SessionView] of the current page.
//  4. [Service.StartSessionSweeper] removes sessions idle longer than the TTL.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - VAL001-VAL002: Form validation errors
//   - PAGE001-PAGE003: Grid paging and selection errors
//   - FILE001-FILE006: Upload errors (size, format, encoding)
//   - SES001-SES002, PAY001: Session and payload errors
//   - UPL002-UPL005, RATE001: Capacity, cancellation and rate limit errors
package core
