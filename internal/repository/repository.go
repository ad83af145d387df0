// Package repository holds the table access for the storefront over
// database/sql + lib/pq. Lookups that tolerate absence return
// (nil, nil); mutations that require a row return ErrNotFound.
package repository

import "errors"

var ErrNotFound = errors.New("repository: row not found")
