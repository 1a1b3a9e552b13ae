package dao

import "errors"

// ErrNotFound marks lookups that matched no row. Callers test with errors.Is
// and decide whether to fall back or report 404.
var ErrNotFound = errors.New("not found")
