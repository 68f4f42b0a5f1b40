/*
Package noidapi holds the types and error codes shared by every layer of noidwrap.

All errors returned from exported functions in this module are serum errors
(see github.com/serum-errors/go-serum) carrying one of the ECode* constants.
*/
package noidapi
