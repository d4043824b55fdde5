// Package utils provides shared utility functions and constants
package utils

// HeaderHXRequest is set to "true" on requests issued by htmx
const HeaderHXRequest = "HX-Request"

// HeaderCSRFToken carries the CSRF token on htmx requests
const HeaderCSRFToken = "X-CSRF-Token"

// CSRFCookieName is the name of the CSRF cookie
const CSRFCookieName = "csrf"
