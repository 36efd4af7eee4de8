// Package transfer downloads reference files and BioMart tables over HTTPS.
//
// Every request carries the configured bearer token and user agent. Files
// are written atomically so a failed download never leaves a truncated
// artifact under its final name. There is no retry: any transport error or
// non-200 response aborts the operation with services.ErrTransfer.
package transfer
