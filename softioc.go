// Package softioc re-exports the primary surface of the library so common
// callers can depend on a single import: declare records, register them in a
// schema, and build a live model over a running soft IOC server.
package softioc

import (
	"github.com/goliatone/go-softioc/pkg/database"
	"github.com/goliatone/go-softioc/pkg/ioc"
	"github.com/goliatone/go-softioc/pkg/pv"
	"github.com/goliatone/go-softioc/pkg/records"
)

// Core model types.
type (
	Model    = ioc.Model
	Schema   = ioc.Schema
	FieldDef = ioc.FieldDef
	Handler  = ioc.Handler
	Macro    = database.Macro
	Record   = records.Record
	Conn     = pv.Conn
	Value    = pv.Value
)

// NewModel builds a live Model from a schema; see ioc.New.
var NewModel = ioc.New

// Schema declaration helpers; see the ioc package.
var (
	NewSchema  = ioc.NewSchema
	MustSchema = ioc.MustSchema
	Field      = ioc.Field
)
