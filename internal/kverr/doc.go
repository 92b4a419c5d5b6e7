/*
Package kverr defines the error taxonomy shared by every layer of the
chainkv store: input validation, journal integrity, and backend
failures. Every layer wraps the underlying cause with %w so callers can
use errors.Is/errors.As regardless of how many layers an error passed
through.
*/
package kverr
