// Package http exposes the booking application over HTTP. Handlers decode
// requests, delegate to the application services, and translate service
// errors into localized JSON responses. Browser clients additionally get
// cookie-based sessions and login redirects.
package http
