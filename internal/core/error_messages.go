// Package core provides the table view engine: column catalogs, per-session
// view state, filtering, sorting, pagination and spreadsheet export.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Settings Errors (SET001-SET099)
//
//	SET001 - Settings load failed: saved column settings could not be read
//	         Action: Defaults are shown; adjust the columns again to save them
//	         Patterns: "load settings", "settings corrupt"
//
//	SET002 - Settings save failed: column settings were not saved
//	         Action: Your change is applied but may be lost on reload
//	         Patterns: "save settings"
//
// # Column Errors (COL001-COL099)
//
//	COL001 - Unknown column: the column is not part of this table
//	         Patterns: "unknown column"
//
// # Export Errors (EXP001-EXP099)
//
//	EXP002 - System busy: too many exports in progress
//	         Patterns: "too many concurrent exports"
//
//	EXP003 - Export expired: the requested file is no longer available
//	         Patterns: "export not found"
//
//	EXP004 - Nothing to export: the request lists no columns
//	         Patterns: "no columns to export"
//
//	EXP005 - Export too large: more rows than the export limit
//	         Patterns: "export too large"
//
//	EXP001 - Export failed: the spreadsheet could not be created
//	         Patterns: "export failed"
//
// # Table and Session Errors (TBL, SES)
//
//	TBL001 - Unknown table: the table is not configured
//	         Patterns: "unknown table"
//
//	SES001 - Session missing: the request carried no session
//	         Patterns: "session required"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Invalid request: the request body could not be read
//	         Patterns: "invalid request"
//
//	REQ002 - Request cancelled: "context canceled"
//	REQ003 - Request timeout: "context deadline exceeded"
//
// # Storage and Rate Limiting
//
//	STO001 - Storage unavailable: "connection refused", "database is locked"
//	RATE001 - Rate limited: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones. Wrapped errors keep the outermost context
// first, which is why "load settings" wins over the store error it wraps.
//
// # For Support Staff
//
// When a user reports an error code:
//  1. Look up the code in this reference
//  2. Check the associated patterns to understand what triggered it
//  3. If ERR000, check application logs for the original technical error
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Patterns are matched using strings.Contains, so partial matches work.
// The first matching pattern wins, so order matters:
//   - More specific patterns should come before general ones
//   - Multiple patterns can map to the same error code
//
// To add a new error pattern:
//  1. Choose the appropriate category and code range
//  2. Add the pattern in the correct position (specific before general)
//  3. Update the package documentation at the top of this file
var errorPatterns = []errorPattern{
	// =========================================================================
	// Settings Errors (SET001-SET002)
	// =========================================================================
	{
		pattern: "load settings",
		msg: UserMessage{
			Message: "Settings load failed",
			Action:  "Default columns are shown; adjust them again to save",
			Code:    "SET001",
		},
	},
	{
		pattern: "settings corrupt",
		msg: UserMessage{
			Message: "Settings load failed",
			Action:  "Default columns are shown; adjust them again to save",
			Code:    "SET001",
		},
	},
	{
		pattern: "save settings",
		msg: UserMessage{
			Message: "Save failed",
			Action:  "Your change is applied but may be lost on reload",
			Code:    "SET002",
		},
	},

	// =========================================================================
	// Column Errors (COL001)
	// =========================================================================
	{
		pattern: "unknown column",
		msg: UserMessage{
			Message: "Unknown column",
			Action:  "Reload the table to get the current column list",
			Code:    "COL001",
		},
	},

	// =========================================================================
	// Export Errors (EXP001-EXP005)
	// Specific causes first; "export failed" wraps most of them.
	// =========================================================================
	{
		pattern: "too many concurrent exports",
		msg: UserMessage{
			Message: "System is busy with other exports",
			Action:  "Please wait a moment and try again",
			Code:    "EXP002",
		},
	},
	{
		pattern: "export not found",
		msg: UserMessage{
			Message: "Export is no longer available",
			Action:  "Start the export again",
			Code:    "EXP003",
		},
	},
	{
		pattern: "no columns to export",
		msg: UserMessage{
			Message: "Nothing to export",
			Action:  "Show at least one column before exporting",
			Code:    "EXP004",
		},
	},
	{
		pattern: "export too large",
		msg: UserMessage{
			Message: "Too many rows to export",
			Action:  "Narrow the rows with filters before exporting",
			Code:    "EXP005",
		},
	},
	{
		pattern: "export failed",
		msg: UserMessage{
			Message: "Export failed",
			Action:  "Please try again",
			Code:    "EXP001",
		},
	},

	// =========================================================================
	// Table and Session Errors (TBL001, SES001)
	// =========================================================================
	{
		pattern: "unknown table",
		msg: UserMessage{
			Message: "Unknown table",
			Action:  "This table is not configured",
			Code:    "TBL001",
		},
	},
	{
		pattern: "session required",
		msg: UserMessage{
			Message: "Session missing",
			Action:  "Enable cookies and reload the page",
			Code:    "SES001",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ003)
	// =========================================================================
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "Invalid request",
			Action:  "Check the request body and try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ003",
		},
	},

	// =========================================================================
	// Storage Errors (STO001)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Settings storage is unavailable",
			Action:  "Please try again in a few moments",
			Code:    "STO001",
		},
	},
	{
		pattern: "database is locked",
		msg: UserMessage{
			Message: "Settings storage is unavailable",
			Action:  "Please try again in a few moments",
			Code:    "STO001",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// This is the fallback for unexpected errors. Support staff should check
// application logs for the original technical error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := fmt.Errorf("save settings: %w", io.ErrClosedPipe)
//	msg := MapError(err)
//	// msg.Code == "SET002"
//	// msg.Message == "Save failed"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
//
// Example output: "Save failed (Code: SET002). Your change is applied but may be lost on reload"
//
// This is the primary function for displaying errors to end users.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
// Use this to decide whether to show the raw error or the mapped user message.
//
// Example:
//
//	if IsUserFacing(err) {
//	    showToUser(FormatUserError(err))
//	} else {
//	    log.Error(err) // Log technical error
//	    showToUser("An error occurred. Please try again.")
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// The returned UserError preserves the original technical error for logging via Unwrap(),
// while providing a clean user message via Error().
//
// Returns nil if err is nil.
//
// Example:
//
//	ue := NewUserError(err)
//	log.Error(ue.Technical)   // Log original error
//	fmt.Println(ue.Error())    // Show "Unknown table"
//	fmt.Println(ue.User.Code)  // Show "TBL001"
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
