// Package api contains the HTTP handlers, request/response models, and
// error mapping for the REST surface. Handlers stay thin: they decode and
// validate input, call a service, and translate the result through the
// shared response helpers.
package api
