// Package ioc builds and supervises soft IOC models: an immutable schema of
// named record declarations, rendered into a database and startup script,
// served by an external server process, with every record bound to a live
// process variable and optional application change handlers.
//
// A model type is declared once:
//
//	enum, _ := records.NewEnum("enum",
//		records.Choices("ZERO", "ONE", "TWO"), records.Desc("Mode"))
//	target, _ := records.NewInteger("target",
//		records.Desc("Target"), records.Units("mm"))
//
//	schema := ioc.MustSchema("Positioner",
//		ioc.Field("enum", enum),
//		ioc.Field("target", target),
//	)
//
// and instantiated per device:
//
//	model, err := ioc.New(ctx, schema, "POS001",
//		ioc.WithClient(client),
//		ioc.WithCallbacks(app),
//	)
//
// The callback provider exposes handlers by naming convention: a method
// DoTarget with the Handler signature handles changes on the field "target".
// When no provider is supplied, the model itself is the provider.
package ioc
